package main

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/contour/tui"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse workspace outlines interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flagWorkspace
			if len(args) == 1 {
				dir = args[0]
			}
			eng, err := loadEngine(cmd, dir)
			if err != nil {
				return err
			}
			defer eng.Close()
			return tui.Run(cmd.Context(), eng)
		},
	}
	return cmd
}
