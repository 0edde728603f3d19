package preflight

import (
	"errors"
	"fmt"
	"strings"

	"rejoin/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the state and scratch directories, plus the input and output
// directories when given. Input only needs to be readable unless originals
// are deleted after merging.
func RunAll(cfg *config.Config, inputDir, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.ScratchDir != "" && cfg.Paths.ScratchDir != cfg.Paths.StateDir {
		results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	}
	if inputDir != "" {
		if cfg.Merge.DeleteOriginals {
			results = append(results, CheckDirectoryAccess("Input directory", inputDir))
		} else {
			results = append(results, CheckDirectoryReadable("Input directory", inputDir))
		}
	}
	if outputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	}
	return results
}

// Failed collects failing results into one error, or nil when all passed.
func Failed(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failures, "; "))
}
