package engine

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the workspace-local configuration file.
const ConfigFileName = ".contour.yaml"

// defaultCacheFile sits next to the config in the workspace root.
const defaultCacheFile = ".contour.db"

// Config matches .contour.yaml inside the workspace.
type Config struct {
	Workers    int               `yaml:"workers"`
	Nested     bool              `yaml:"nested"`
	Cache      CacheConfig       `yaml:"cache"`
	Extensions map[string]string `yaml:"extensions"`
	Ignore     []string          `yaml:"ignore"`
	Servers    []ServerConfig    `yaml:"servers"`
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig declares a language server for a language that has no
// built-in frontend, or overrides the stock one.
type ServerConfig struct {
	Language string   `yaml:"language"`
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
}

// DefaultConfigPath returns .contour.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ConfigFileName)
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Workers: 4,
		Cache:   CacheConfig{Enabled: true, Path: defaultCacheFile},
	}
}

// LoadConfig loads the config or returns defaults when missing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCacheFile
	}
	return &cfg, nil
}

// SaveConfig writes the config to disk.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
