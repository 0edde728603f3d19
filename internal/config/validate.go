package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	if err := c.validateState(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Window <= 0 {
		return errors.New("scan.window must be positive (frames)")
	}
	if c.Scan.Tolerance < 0 {
		return errors.New("scan.tolerance must be >= 0 (seconds)")
	}
	if strings.ContainsAny(c.Scan.Extension, `/\`) {
		return fmt.Errorf("scan.extension %q must not contain path separators", c.Scan.Extension)
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if c.Overlay.X < 0 || c.Overlay.Y < 0 {
		return errors.New("overlay.x and overlay.y must be >= 0")
	}
	if err := ensurePositiveMap(map[string]int{
		"overlay.width":  c.Overlay.Width,
		"overlay.height": c.Overlay.Height,
	}); err != nil {
		return err
	}
	if c.Overlay.PageSegMode < 0 || c.Overlay.PageSegMode > 13 {
		return errors.New("overlay.page_seg_mode must be between 0 and 13")
	}
	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case StateBackendText, StateBackendSQLite:
		return nil
	default:
		return fmt.Errorf("state.backend: unsupported value %q (want %q or %q)", c.State.Backend, StateBackendText, StateBackendSQLite)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Progress {
	case ProgressAuto, ProgressBar, ProgressLog, ProgressNone:
	default:
		return fmt.Errorf("logging.progress: unsupported value %q", c.Logging.Progress)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
