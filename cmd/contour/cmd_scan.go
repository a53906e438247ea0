package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/contour/engine"
)

var (
	pathStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

func newScanCmd() *cobra.Command {
	var workers int
	var summaryOnly bool
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Outline every supported file under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flagWorkspace
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, err := loadConfig(cmd, dir)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			eng, err := engine.New(dir, cfg)
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.OutlineWorkspace()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !summaryOnly {
				for _, report := range result.Reports {
					fmt.Fprintln(out, reportLine(eng.Root(), report))
				}
			}
			for _, failure := range result.Failures {
				fmt.Fprintln(cmd.ErrOrStderr(), failStyle.Render(fmt.Sprintf("%s: %v", relPath(eng.Root(), failure.Path), failure.Err)))
			}
			fmt.Fprintln(out, scanSummary(result))
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count for the scan (default from config)")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the scan summary")
	return cmd
}

func reportLine(root string, report *engine.Report) string {
	line := pathStyle.Render(relPath(root, report.Path)) + " " + mutedStyle.Render(report.Language)
	if report.ErrorCount > 0 {
		line += " " + warnStyle.Render(fmt.Sprintf("%d parse errors", report.ErrorCount))
	}
	if report.CacheHit {
		line += " " + mutedStyle.Render("(cached)")
	}
	return line
}

func scanSummary(result *engine.ScanResult) string {
	line := okStyle.Render(fmt.Sprintf("%d reports", len(result.Reports)))
	if len(result.Failures) > 0 {
		line += ", " + failStyle.Render(fmt.Sprintf("%d failures", len(result.Failures)))
	}
	return fmt.Sprintf("scanned %d files in %s: %s",
		len(result.Reports)+len(result.Failures), result.Duration.Round(time.Millisecond), line)
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
