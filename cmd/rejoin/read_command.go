package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rejoin/internal/config"
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	var window int
	var tail bool

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Print the clock read from one recording",
		Long: "Read the burnt-in clock over the first frames of a recording, or the\n" +
			"last frames with --tail. Useful for tuning the [overlay] region.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			n := cfg.Scan.Window
			if cmd.Flags().Changed("window") {
				n = window
			}
			if n < 0 {
				n = -n
			}
			if tail {
				n = -n
			}
			runner, err := ctx.runner(cmd)
			if err != nil {
				return err
			}
			reading, err := runner.ReadClock(cmd.Context(), path, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reading)
			return nil
		},
	}
	cmd.Flags().IntVarP(&window, "window", "w", config.Default().Scan.Window, "Frames to read")
	cmd.Flags().BoolVar(&tail, "tail", false, "Read the last frames instead of the first")
	return cmd
}
