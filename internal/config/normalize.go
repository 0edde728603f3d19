package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeOverlay()
	c.normalizeState()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		if c.Paths.StateDir, err = defaultStateDir(); err != nil {
			return fmt.Errorf("paths.state_dir: %w", err)
		}
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = c.Paths.StateDir
	}
	if c.Paths.ScratchDir, err = expandPath(strings.TrimSpace(c.Paths.ScratchDir)); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	ext := strings.TrimSpace(c.Scan.Extension)
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Scan.Extension = ext
}

func (c *Config) normalizeOverlay() {
	if strings.TrimSpace(c.Overlay.AllowedChars) == "" {
		c.Overlay.AllowedChars = defaultAllowedChars
	}
	if c.Overlay.PageSegMode == 0 {
		c.Overlay.PageSegMode = defaultPageSegMode
	}
}

func (c *Config) normalizeState() {
	c.State.Backend = StateBackend(strings.ToLower(strings.TrimSpace(string(c.State.Backend))))
	if c.State.Backend == "" {
		c.State.Backend = defaultStateBackend
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.Tesseract = strings.TrimSpace(c.Tools.Tesseract)
	if c.Tools.Tesseract == "" {
		c.Tools.Tesseract = defaultTesseractBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Progress = ProgressMode(strings.ToLower(strings.TrimSpace(string(c.Logging.Progress))))
	if c.Logging.Progress == "" {
		c.Logging.Progress = defaultProgressMode
	}
}
