package main

import (
	"github.com/spf13/cobra"

	"rejoin/internal/config"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var flags mergeFlags

	cmd := &cobra.Command{
		Use:   "merge <output-dir>",
		Short: "Merge every chain in the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			output, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg, output)
			runner, err := ctx.runner(cmd)
			if err != nil {
				return err
			}
			summary, err := runner.Merge(cmd.Context(), opts)
			if len(summary.Chains) == 0 && err == nil {
				printChains(cmd.OutOrStdout(), nil)
				return nil
			}
			printMergeReport(cmd.OutOrStdout(), summary.Merge)
			return err
		},
	}
	flags.bind(cmd)
	return cmd
}
