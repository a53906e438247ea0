package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/contour/engine"
)

var (
	flagWorkspace string
	flagNested    bool
	flagNoCache   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "contour",
		Short: "Structural outlines for source files and workspaces",
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root (config and cache live here)")
	root.PersistentFlags().BoolVar(&flagNested, "nested", false, "Nest containers and terminals instead of the flat unit view")
	root.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the report cache entirely")

	root.AddCommand(newOutlineCmd(), newScanCmd(), newBrowseCmd(), newLangsCmd(), newCacheCmd())
	return root
}

// loadConfig reads the workspace config file and layers the persistent flags
// on top of it.
func loadConfig(cmd *cobra.Command, dir string) (*engine.Config, error) {
	cfg, err := engine.LoadConfig(engine.DefaultConfigPath(dir))
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("nested") {
		cfg.Nested = flagNested
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func loadEngine(cmd *cobra.Command, dir string) (*engine.Engine, error) {
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, err
	}
	return engine.New(dir, cfg)
}
