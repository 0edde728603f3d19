package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// StateBackend selects how the processed set and chain registry are persisted.
type StateBackend string

const (
	StateBackendText   StateBackend = "text"   // processed.txt + chains.txt beside the program.
	StateBackendSQLite StateBackend = "sqlite" // rejoin.db beside the program.
)

// ProgressMode controls how per-frame scan progress is surfaced.
type ProgressMode string

const (
	ProgressAuto ProgressMode = "auto" // Bar on a terminal, sampled log lines otherwise.
	ProgressBar  ProgressMode = "bar"
	ProgressLog  ProgressMode = "log"
	ProgressNone ProgressMode = "none"
)

// Paths contains directory configuration.
type Paths struct {
	StateDir   string `toml:"state_dir"`   // Default: directory of the rejoin executable.
	LogDir     string `toml:"log_dir"`     // Empty disables the log file.
	ScratchDir string `toml:"scratch_dir"` // Default: state_dir.
}

// Scan contains chain-building knobs.
type Scan struct {
	Extension       string `toml:"extension"`
	Window          int    `toml:"window"`    // Frames scanned at the tail/head of each file.
	Tolerance       int    `toml:"tolerance"` // Seconds.
	UseCache        bool   `toml:"use_cache"`
	RetryUnreadable bool   `toml:"retry_unreadable"`
}

// Overlay describes where and how the burnt-in clock is read.
type Overlay struct {
	X            int    `toml:"x"`
	Y            int    `toml:"y"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	AllowedChars string `toml:"allowed_chars"`
	PageSegMode  int    `toml:"page_seg_mode"`
}

// Region returns the overlay rectangle in frame coordinates.
func (o Overlay) Region() image.Rectangle {
	return image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height)
}

// State selects the persistence backend.
type State struct {
	Backend StateBackend `toml:"backend"`
}

// Merge contains merge behaviour.
type Merge struct {
	DeleteOriginals bool `toml:"delete_originals"`
	Overwrite       bool `toml:"overwrite"`
	VerifyCodecs    bool `toml:"verify_codecs"`
}

// Tools names the external executables.
type Tools struct {
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
	Tesseract string `toml:"tesseract"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format   string       `toml:"format"`
	Level    string       `toml:"level"`
	Progress ProgressMode `toml:"progress"`
}

// Config encapsulates all configuration values for rejoin.
//
// Configuration sections by subsystem:
//   - Paths: state, log, and scratch directories
//   - Scan: window, tolerance, cache, and input extension
//   - Overlay: clock rectangle and OCR settings
//   - State: persistence backend
//   - Merge: deletion and overwrite policy
//   - Tools: ffmpeg/ffprobe/tesseract executables
//   - Logging: log format, level, and progress display
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	Overlay Overlay `toml:"overlay"`
	State   State   `toml:"state"`
	Merge   Merge   `toml:"merge"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rejoin/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rejoin.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and scratch directories, plus the log
// directory when file logging is enabled.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.ScratchDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
