package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rejoin/internal/config"
	"rejoin/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [input-dir] [output-dir]",
		Short: "Check external tools and directory access",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs := make([]string, 2)
			for i, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				dirs[i] = expanded
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			healthy := true

			fmt.Fprintln(out, "Tools")
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				kind := statusOK
				switch {
				case status.Available:
				case status.Optional:
					kind = statusWarn
				default:
					kind = statusError
					healthy = false
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, status.Detail, colorize))
			}

			fmt.Fprintln(out, "Directories")
			for _, result := range preflight.RunAll(cfg, dirs[0], dirs[1]) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					healthy = false
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if !healthy {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
