package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rejoin/internal/config"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <input-dir>",
		Short: "Build chains without merging",
		Long: "Read the clock at the end and start of each adjacent pair of recordings,\n" +
			"record continuing pairs in the chain registry and print the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			runner, err := ctx.runner(cmd)
			if err != nil {
				return err
			}
			summary, err := runner.Scan(cmd.Context(), input, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printChains(out, summary.Chains)
			stats := summary.Build
			fmt.Fprintf(out, "Files %d, pairs %d, cached %d, matched %d, unmatched %d, unreadable %d\n",
				summary.Files, stats.Pairs, stats.Skipped, stats.Matched, stats.Unmatched, stats.Failed)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
