package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/contour/engine"
)

func newOutlineCmd() *cobra.Command {
	var outPath string
	var language string
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the structural outline report for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, flagWorkspace)
			if err != nil {
				return err
			}
			defer eng.Close()

			report, err := eng.OutlineFileAs(args[0], language)
			if err != nil {
				var unavailable *engine.UnavailableError
				if errors.As(err, &unavailable) {
					for _, diag := range unavailable.Diagnostics {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", unavailable.Path, diag.Line, diag.Column, diag.Message)
					}
				}
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, []byte(report.Output), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&language, "lang", "", "Force the language instead of detecting it from the file name")
	return cmd
}
