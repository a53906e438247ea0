package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, defaultCacheFile, cfg.Cache.Path)
	require.False(t, cfg.Nested)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
workers: 8
nested: true
cache:
  enabled: false
extensions:
  ".proto": "protobuf"
ignore:
  - "*_generated.go"
servers:
  - language: protobuf
    command: buf-ls
    args: ["--stdio"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Workers)
	require.True(t, cfg.Nested)
	require.False(t, cfg.Cache.Enabled)
	// The cache path keeps its default even when caching is off.
	require.Equal(t, defaultCacheFile, cfg.Cache.Path)
	require.Equal(t, "protobuf", cfg.Extensions[".proto"])
	require.Equal(t, []string{"*_generated.go"}, cfg.Ignore)
	require.Len(t, cfg.Servers, 1)
	require.Equal(t, "buf-ls", cfg.Servers[0].Command)
}

func TestLoadConfigFillsWorkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Nested = true
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Workers)
	require.True(t, loaded.Nested)

	require.Error(t, SaveConfig(path, nil))
}
