package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rejoin/internal/config"
	"rejoin/internal/logging"
	"rejoin/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	stateDirFlag *string
	quietFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce   sync.Once
	logger       *slog.Logger
	loggerCloser io.Closer
	loggerErr    error
}

func newCommandContext(configFlag, logLevelFlag, stateDirFlag *string, quietFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		stateDirFlag: stateDirFlag,
		quietFlag:    quietFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if dir := flagValue(c.stateDirFlag); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --state-dir: %w", err)
				return
			}
			if cfg.Paths.ScratchDir == cfg.Paths.StateDir {
				cfg.Paths.ScratchDir = expanded
			}
			cfg.Paths.StateDir = expanded
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := flagValue(c.logLevelFlag)
		if c.quietFlag != nil && *c.quietFlag {
			level = "error"
		}
		logger, closer, err := logging.NewFromConfig(cfg, level)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
		c.loggerCloser = closer
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) close() {
	if c.loggerCloser != nil {
		_ = c.loggerCloser.Close()
		c.loggerCloser = nil
	}
}

// runner builds a workflow runner; quiet runs draw no progress bar.
func (c *commandContext) runner(cmd *cobra.Command) (*workflow.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if c.quietFlag != nil && *c.quietFlag {
		cfg.Logging.Progress = config.ProgressNone
	}
	return workflow.NewRunner(cfg, logger, workflow.WithProgressWriter(cmd.ErrOrStderr())), nil
}

func flagValue(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
