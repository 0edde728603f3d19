package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"rejoin/internal/config"
)

// Requirement defines an external tool rejoin relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Detail = resolved
		results = append(results, status)
	}
	return results
}

// ToolRequirements lists every external program configured in tools.
func ToolRequirements(tools config.Tools) []Requirement {
	return append(MergeRequirements(tools), Requirement{
		Name:        "Tesseract",
		Command:     tools.Tesseract,
		Description: "Recognizes the on-screen clock",
	})
}

// MergeRequirements lists the programs needed to merge an existing registry.
func MergeRequirements(tools config.Tools) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     tools.FFmpeg,
			Description: "Decodes frames and concatenates chains",
		},
		{
			Name:        "FFprobe",
			Command:     tools.FFprobe,
			Description: "Reads frame counts and stream parameters",
		},
	}
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

// Require fails when any non-optional requirement cannot be found.
func Require(requirements []Requirement) error {
	missing := Missing(CheckBinaries(requirements))
	if len(missing) == 0 {
		return nil
	}
	errs := make([]error, 0, len(missing))
	for _, s := range missing {
		errs = append(errs, fmt.Errorf("%s: %s", s.Name, s.Detail))
	}
	return fmt.Errorf("missing external tools: %w", errors.Join(errs...))
}

// RequireTools fails when any configured tool cannot be found.
func RequireTools(tools config.Tools) error {
	return Require(ToolRequirements(tools))
}
