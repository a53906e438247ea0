package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the report cache",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheListCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show report cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, flagWorkspace)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats, err := eng.CacheStats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reports:  %d\n", stats.TotalReports)
			fmt.Fprintf(out, "errors:   %d\n", stats.WithErrors)
			fmt.Fprintf(out, "size:     %s\n", formatBytes(stats.DatabaseSize))
			languages := make([]string, 0, len(stats.ByLanguage))
			for language := range stats.ByLanguage {
				languages = append(languages, language)
			}
			sort.Strings(languages)
			for _, language := range languages {
				fmt.Fprintf(out, "  %-12s %d\n", language, stats.ByLanguage[language])
			}
			return nil
		},
	}
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List cached reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, flagWorkspace)
			if err != nil {
				return err
			}
			defer eng.Close()

			records, err := eng.CachedReports()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				mode := "flat"
				if rec.Nested {
					mode = "nested"
				}
				line := fmt.Sprintf("%s  %-10s %-6s %s", rec.GeneratedAt.Format("2006-01-02 15:04"), rec.Language, mode, rec.Path)
				if rec.ErrorCount > 0 {
					line += " " + warnStyle.Render(fmt.Sprintf("(%d errors)", rec.ErrorCount))
				}
				fmt.Fprintln(out, line)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("cache is empty"))
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached report",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, flagWorkspace)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.ClearCache(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "report cache cleared")
			return nil
		},
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
