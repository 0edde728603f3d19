package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"rejoin/internal/fileutil"
	"rejoin/internal/logging"
	"rejoin/internal/preflight"
	"rejoin/internal/state"
)

var (
	// ErrIncompatible means chain members differ in stream parameters.
	ErrIncompatible = errors.New("chain members are not stream-compatible")
	// ErrInsufficientSpace means the output filesystem cannot hold the result.
	ErrInsufficientSpace = errors.New("insufficient space for merged output")
	// ErrMergeFailed means the concatenation itself failed or produced nothing.
	ErrMergeFailed = errors.New("merge failed")
)

// Options controls one Merge call.
type Options struct {
	OutputDir       string
	DeleteOriginals bool
	Overwrite       bool
	VerifyCodecs    bool
}

// Status is the outcome of merging one chain.
type Status string

const (
	StatusMerged  Status = "merged"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ChainResult describes what happened to one chain.
type ChainResult struct {
	Members []string
	Output  string
	Status  Status
	Bytes   int64
	Deleted int
	Err     error
}

// Report collects per-chain results in input order.
type Report struct {
	Results []ChainResult
}

func (r Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func (r Report) Merged() int  { return r.count(StatusMerged) }
func (r Report) Skipped() int { return r.count(StatusSkipped) }
func (r Report) Failed() int  { return r.count(StatusFailed) }

// Orchestrator merges chains one at a time.
type Orchestrator struct {
	Concat     Concatenator
	Inspector  Inspector
	ScratchDir string
	Logger     *slog.Logger

	freeBytes func(string) (uint64, error)
}

// NewOrchestrator wires an orchestrator. Concat lists are written to
// scratchDir, or to the system temp dir when it is empty.
func NewOrchestrator(concat Concatenator, inspector Inspector, scratchDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Concat:     concat,
		Inspector:  inspector,
		ScratchDir: scratchDir,
		Logger:     logging.NewComponentLogger(logger, "merge"),
		freeBytes:  preflight.FreeBytes,
	}
}

// OutputName joins the members' base names without extension with "_" and
// appends the first member's extension.
func OutputName(chain state.Chain) string {
	if len(chain) == 0 {
		return ""
	}
	parts := make([]string, len(chain))
	for i, member := range chain {
		base := filepath.Base(member)
		parts[i] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.Join(parts, "_") + filepath.Ext(chain[0])
}

// Merge processes every chain and returns the joined errors of the chains
// that failed or whose originals could not all be deleted. Skipped chains
// are not errors.
func (o *Orchestrator) Merge(ctx context.Context, chains []state.Chain, opts Options) (Report, error) {
	var (
		report Report
		errs   []error
	)
	if o.Concat == nil {
		return report, errors.New("merge: concatenator is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return report, errors.New("merge: output directory is required")
	}

	logger := o.logger()
	logger.Info("merging chains", logging.Int("chains", len(chains)), logging.String(logging.FieldOutput, opts.OutputDir))

	for i, chain := range chains {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := o.mergeOne(ctx, i, chain, opts)
		report.Results = append(report.Results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("chain %s: %w", OutputName(chain), res.Err))
		}
	}

	logger.Info("merge complete",
		logging.Int("merged", report.Merged()),
		logging.Int("skipped", report.Skipped()),
		logging.Int("failed", report.Failed()))
	return report, errors.Join(errs...)
}

func (o *Orchestrator) mergeOne(ctx context.Context, index int, chain state.Chain, opts Options) ChainResult {
	res := ChainResult{Members: chain.Clone()}
	fail := func(err error) ChainResult {
		res.Status = StatusFailed
		res.Err = err
		o.logger().Error("chain merge failed",
			logging.Int(logging.FieldChain, index),
			logging.String(logging.FieldOutput, res.Output),
			logging.Error(err),
			logging.String(logging.FieldEventType, "merge_failed"),
			logging.String(logging.FieldErrorHint, "originals were left in place"))
		return res
	}

	if len(chain) < 2 {
		return fail(fmt.Errorf("chain has %d member(s), need at least 2", len(chain)))
	}
	res.Output = filepath.Join(opts.OutputDir, OutputName(chain))
	logger := o.logger().With(logging.Int(logging.FieldChain, index), logging.String(logging.FieldOutput, res.Output))

	exists, err := fileutil.Exists(res.Output)
	if err != nil {
		return fail(fmt.Errorf("stat output: %w", err))
	}
	if exists && !opts.Overwrite {
		res.Status = StatusSkipped
		logger.Info("output exists, chain skipped")
		return res
	}

	need, err := o.preflight(ctx, chain, opts)
	if err != nil {
		return fail(err)
	}

	logger.Info("merging chain",
		logging.Strings("members", baseNames(chain)),
		logging.String("size", humanize.IBytes(need)))

	if err := o.concat(ctx, index, chain, res.Output); err != nil {
		return fail(err)
	}

	info, err := os.Stat(res.Output)
	if err != nil {
		return fail(fmt.Errorf("%w: output missing: %v", ErrMergeFailed, err))
	}
	res.Bytes = info.Size()
	res.Status = StatusMerged
	logger.Info("chain merged", logging.String("size", humanize.IBytes(uint64(res.Bytes))))

	if opts.DeleteOriginals {
		res.Deleted, res.Err = deleteMembers(chain)
		if res.Err != nil {
			logger.Warn("could not delete every original", logging.Error(res.Err), logging.Int("deleted", res.Deleted))
		} else {
			logger.Info("originals deleted", logging.Int("deleted", res.Deleted))
		}
	}
	return res
}

// preflight validates members and the output directory and returns the
// bytes the merged file will need.
func (o *Orchestrator) preflight(ctx context.Context, chain state.Chain, opts Options) (uint64, error) {
	total, err := fileutil.TotalSize(chain)
	if err != nil {
		return 0, fmt.Errorf("member check: %w", err)
	}

	if opts.VerifyCodecs && o.Inspector != nil {
		first, err := o.Inspector.Signature(ctx, chain[0])
		if err != nil {
			return 0, fmt.Errorf("inspect %s: %w", chain[0], err)
		}
		for _, member := range chain[1:] {
			sig, err := o.Inspector.Signature(ctx, member)
			if err != nil {
				return 0, fmt.Errorf("inspect %s: %w", member, err)
			}
			if diff := first.Mismatch(sig); diff != "" {
				return 0, fmt.Errorf("%w: %s: %s", ErrIncompatible, filepath.Base(member), diff)
			}
		}
	}

	if r := preflight.CheckDirectoryAccess("Output directory", opts.OutputDir); !r.Passed {
		return 0, errors.New(r.Detail)
	}
	need := uint64(total)
	if o.freeBytes != nil {
		free, err := o.freeBytes(opts.OutputDir)
		if err != nil {
			return 0, err
		}
		if free < need {
			return 0, fmt.Errorf("%w: %s free, %s needed", ErrInsufficientSpace, humanize.IBytes(free), humanize.IBytes(need))
		}
	}
	return need, nil
}

// concat writes the list file, runs the concatenator into a hidden partial
// file and renames it over output once it is non-empty. The list file and
// any partial output are removed whatever the outcome.
func (o *Orchestrator) concat(ctx context.Context, index int, chain state.Chain, output string) error {
	scratch := o.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	list, err := os.CreateTemp(scratch, fmt.Sprintf("concat-%d-*.txt", index))
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	listPath := list.Name()
	_ = list.Close()
	defer func() { _ = os.Remove(listPath) }()

	if err := WriteList(listPath, chain); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	name := filepath.Base(output)
	ext := filepath.Ext(name)
	partial := filepath.Join(filepath.Dir(output), "."+strings.TrimSuffix(name, ext)+".partial"+ext)
	defer func() { _ = os.Remove(partial) }()

	if err := o.Concat.Concat(ctx, listPath, partial); err != nil {
		if errors.Is(err, ErrMergeFailed) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}

	info, err := os.Stat(partial)
	if err != nil {
		return fmt.Errorf("%w: no output produced: %v", ErrMergeFailed, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: output is empty", ErrMergeFailed)
	}
	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("%w: move output into place: %v", ErrMergeFailed, err)
	}
	return nil
}

func deleteMembers(chain state.Chain) (int, error) {
	var (
		deleted int
		errs    []error
	)
	for _, member := range chain {
		if err := os.Remove(member); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}
