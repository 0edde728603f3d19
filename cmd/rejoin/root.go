package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rejoin/internal/config"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag   string
		logLevelFlag string
		stateDirFlag string
		quietFlag    bool
		scan         scanFlags
		merge        mergeFlags
	)

	ctx := newCommandContext(&configFlag, &logLevelFlag, &stateDirFlag, &quietFlag)

	rootCmd := &cobra.Command{
		Use:   "rejoin <input-dir> <output-dir>",
		Short: "Rejoin camera recordings that were split mid-take",
		Long: "rejoin compares the burnt-in clock at the end of each recording with the\n" +
			"start of the next, groups continuing files into chains and concatenates\n" +
			"each chain into one file without re-encoding.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected <input-dir> <output-dir>, got %d argument(s)", len(args))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runRejoin(cmd, ctx, &scan, &merge, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "Directory holding the processed set and chain registry")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only log errors and hide progress")
	scan.bind(rootCmd)
	merge.bind(rootCmd)

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newReadCommand(ctx))
	rootCmd.AddCommand(newStateCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}

func runRejoin(cmd *cobra.Command, ctx *commandContext, scan *scanFlags, merge *mergeFlags, inputDir, outputDir string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	input, err := config.ExpandPath(inputDir)
	if err != nil {
		return err
	}
	output, err := config.ExpandPath(outputDir)
	if err != nil {
		return err
	}
	copts, err := scan.options(cmd, cfg)
	if err != nil {
		return err
	}
	mopts := merge.options(cmd, cfg, output)

	runner, err := ctx.runner(cmd)
	if err != nil {
		return err
	}
	summary, err := runner.Run(cmd.Context(), input, copts, mopts)
	printChains(cmd.OutOrStdout(), summary.Chains)
	printMergeReport(cmd.OutOrStdout(), summary.Merge)
	return err
}
