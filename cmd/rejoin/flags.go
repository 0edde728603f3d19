package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rejoin/internal/chain"
	"rejoin/internal/config"
	"rejoin/internal/merge"
)

// scanFlags override the [scan] section for one invocation.
type scanFlags struct {
	window          int
	tolerance       int
	noCache         bool
	retryUnreadable bool
}

func (f *scanFlags) bind(cmd *cobra.Command) {
	defaults := config.Default().Scan
	cmd.Flags().IntVarP(&f.window, "window", "w", defaults.Window, "Frames scanned at the end and start of each pair")
	cmd.Flags().IntVarP(&f.tolerance, "tolerance", "t", defaults.Tolerance, "Maximum clock difference in seconds")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Re-evaluate files processed by earlier runs")
	cmd.Flags().BoolVar(&f.retryUnreadable, "retry-unreadable", defaults.RetryUnreadable, "Keep files with unreadable clocks out of the cache")
}

// options resolves scan options and rejects values the config file would
// not accept, since a bad window marks every file processed.
func (f *scanFlags) options(cmd *cobra.Command, cfg *config.Config) (chain.Options, error) {
	opts := chain.Options{
		Window:          cfg.Scan.Window,
		Tolerance:       cfg.Scan.Tolerance,
		UseCache:        cfg.Scan.UseCache,
		RetryUnreadable: cfg.Scan.RetryUnreadable,
	}
	flags := cmd.Flags()
	if flags.Changed("window") {
		opts.Window = f.window
	}
	if flags.Changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	if f.noCache {
		opts.UseCache = false
	}
	if flags.Changed("retry-unreadable") {
		opts.RetryUnreadable = f.retryUnreadable
	}
	if opts.Window <= 0 {
		return opts, fmt.Errorf("--window must be positive (frames), got %d", opts.Window)
	}
	if opts.Tolerance < 0 {
		return opts, fmt.Errorf("--tolerance must be >= 0 (seconds), got %d", opts.Tolerance)
	}
	return opts, nil
}

// mergeFlags override the [merge] section for one invocation.
type mergeFlags struct {
	deleteOriginals bool
	overwrite       bool
	noVerify        bool
}

func (f *mergeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.deleteOriginals, "delete", false, "Delete originals after a verified merge")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace merged outputs that already exist")
	cmd.Flags().BoolVar(&f.noVerify, "no-verify", false, "Skip the codec compatibility check")
}

// options resolves merge options and writes them back to cfg so preflight
// checks see the effective values.
func (f *mergeFlags) options(cmd *cobra.Command, cfg *config.Config, outputDir string) merge.Options {
	flags := cmd.Flags()
	if flags.Changed("delete") {
		cfg.Merge.DeleteOriginals = f.deleteOriginals
	}
	if flags.Changed("overwrite") {
		cfg.Merge.Overwrite = f.overwrite
	}
	if f.noVerify {
		cfg.Merge.VerifyCodecs = false
	}
	return merge.Options{
		OutputDir:       outputDir,
		DeleteOriginals: cfg.Merge.DeleteOriginals,
		Overwrite:       cfg.Merge.Overwrite,
		VerifyCodecs:    cfg.Merge.VerifyCodecs,
	}
}
