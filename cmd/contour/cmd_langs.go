package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/contour/frontend"
	"github.com/lexcodex/contour/lsp"
)

func newLangsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langs",
		Short: "List built-in frontends and known language servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, sectionStyle.Render("Built-in frontends"))
			for _, language := range frontend.NewRegistry().Languages() {
				fmt.Fprintf(out, "  %s\n", language)
			}

			fmt.Fprintln(out, sectionStyle.Render("Language servers"))
			for _, language := range lsp.KnownLanguages() {
				cfg, _ := lsp.Known(language)
				status := okStyle.Render("available")
				if _, err := exec.LookPath(cfg.Command); err != nil {
					status = mutedStyle.Render("not installed")
				}
				fmt.Fprintf(out, "  %-12s %-36s %s\n", language, serverCommand(cfg), status)
			}
			return nil
		},
	}
	return cmd
}

func serverCommand(cfg lsp.Config) string {
	return strings.Join(append([]string{cfg.Command}, cfg.Args...), " ")
}
