package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"rejoin/internal/chain"
	"rejoin/internal/config"
	"rejoin/internal/deps"
	"rejoin/internal/frames"
	"rejoin/internal/logging"
	"rejoin/internal/merge"
	"rejoin/internal/ocr"
	"rejoin/internal/overlay"
	"rejoin/internal/preflight"
	"rejoin/internal/progress"
	"rejoin/internal/scan"
	"rejoin/internal/scratch"
	"rejoin/internal/state"
	"rejoin/internal/timecode"
)

// Leftovers younger than this may belong to a run against another state directory.
const staleScratchAge = time.Hour

// Summary describes one run.
type Summary struct {
	RunID    string
	Files    int
	Chains   []state.Chain
	Build    chain.Stats
	Merge    merge.Report
	Pruned   int
	Duration time.Duration
}

// Runner wires configuration to the scan and merge stages.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger

	reader      chain.TimeReader
	concat      merge.Concatenator
	inspector   merge.Inspector
	progressOut io.Writer
	skipTools   bool
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithTimeReader replaces the ffmpeg + tesseract clock reader.
func WithTimeReader(reader chain.TimeReader) RunnerOption {
	return func(r *Runner) { r.reader = reader }
}

// WithConcatenator replaces the ffmpeg concat demuxer.
func WithConcatenator(c merge.Concatenator) RunnerOption {
	return func(r *Runner) { r.concat = c }
}

// WithInspector replaces the ffprobe signature reader.
func WithInspector(p merge.Inspector) RunnerOption {
	return func(r *Runner) { r.inspector = p }
}

// WithProgressWriter sets where the progress bar is drawn (default stderr).
func WithProgressWriter(w io.Writer) RunnerOption {
	return func(r *Runner) { r.progressOut = w }
}

// WithoutToolCheck skips the PATH lookup of external tools.
func WithoutToolCheck() RunnerOption {
	return func(r *Runner) { r.skipTools = true }
}

// NewRunner returns a runner for cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "workflow"),
		progressOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type session struct {
	runID  string
	logger *slog.Logger
	store  state.Store
	state  *state.State
}

// withSession holds the state lock and an open store for the duration of fn.
func (r *Runner) withSession(ctx context.Context, fn func(*session) error) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	lock, err := state.AcquireLock(r.cfg.Paths.StateDir)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release state lock", logging.Error(err))
		}
	}()

	store, err := state.Open(r.cfg)
	if err != nil {
		return summary, fmt.Errorf("open state: %w", err)
	}
	defer func() { _ = store.Close() }()

	st, err := store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load state: %w", err)
	}
	logger.Info("state loaded",
		logging.String("location", store.Location()),
		logging.Int("processed", len(st.Processed)),
		logging.Int("chains", len(st.Chains)))

	s := &session{runID: summary.RunID, logger: logger, store: store, state: st}
	err = fn(s)
	summary.Duration = time.Since(started)
	return summary, err
}

// Scan lists inputDir and extends the chain registry.
func (r *Runner) Scan(ctx context.Context, inputDir string, opts chain.Options) (Summary, error) {
	var (
		files  []string
		stats  chain.Stats
		chains []state.Chain
	)
	summary, err := r.withSession(ctx, func(s *session) error {
		var err error
		files, chains, stats, err = r.scan(ctx, s, inputDir, opts)
		return err
	})
	summary.Files = len(files)
	summary.Chains = chains
	summary.Build = stats
	return summary, err
}

// Merge concatenates every chain in the persisted registry.
func (r *Runner) Merge(ctx context.Context, opts merge.Options) (Summary, error) {
	var (
		report merge.Report
		chains []state.Chain
		pruned int
	)
	summary, err := r.withSession(ctx, func(s *session) error {
		chains = s.state.Chains
		var err error
		report, pruned, err = r.merge(ctx, s, chains, opts)
		return err
	})
	summary.Chains = chains
	summary.Merge = report
	summary.Pruned = pruned
	return summary, err
}

// Run scans inputDir and merges every known chain into opts.OutputDir.
func (r *Runner) Run(ctx context.Context, inputDir string, copts chain.Options, mopts merge.Options) (Summary, error) {
	var (
		files  []string
		stats  chain.Stats
		chains []state.Chain
		report merge.Report
		pruned int
	)
	summary, err := r.withSession(ctx, func(s *session) error {
		var err error
		files, chains, stats, err = r.scan(ctx, s, inputDir, copts)
		if err != nil {
			return err
		}
		report, pruned, err = r.merge(ctx, s, chains, mopts)
		return err
	})
	summary.Files = len(files)
	summary.Chains = chains
	summary.Build = stats
	summary.Merge = report
	summary.Pruned = pruned
	if err == nil {
		r.logger.Info("run complete",
			logging.String(logging.FieldRunID, summary.RunID),
			logging.Int("files", summary.Files),
			logging.Int("chains", len(chains)),
			logging.Int("merged", report.Merged()),
			logging.Int("skipped", report.Skipped()),
			logging.Duration("duration", summary.Duration))
	}
	return summary, err
}

func (r *Runner) scan(ctx context.Context, s *session, inputDir string, opts chain.Options) ([]string, []state.Chain, chain.Stats, error) {
	if err := preflight.Failed(preflight.RunAll(r.cfg, inputDir, "")); err != nil {
		return nil, nil, chain.Stats{}, err
	}
	files, err := scan.List(inputDir, r.cfg.Scan.Extension)
	if err != nil {
		return nil, nil, chain.Stats{}, err
	}
	s.logger.Info("searching for chains",
		logging.String("input", inputDir),
		logging.Int("files", len(files)),
		logging.Int(logging.FieldWindow, opts.Window),
		logging.Int("tolerance", opts.Tolerance),
		logging.Bool("use_cache", opts.UseCache))

	reader, err := r.timeReader()
	if err != nil {
		return files, nil, chain.Stats{}, err
	}
	builder := chain.NewBuilder(chain.NewMatcher(reader, s.logger), s.store, s.state, s.logger)
	chains, err := builder.Build(ctx, files, opts)
	return files, chains, builder.Stats(), err
}

func (r *Runner) merge(ctx context.Context, s *session, chains []state.Chain, opts merge.Options) (merge.Report, int, error) {
	if opts.OutputDir == "" {
		return merge.Report{}, 0, errors.New("output directory is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return merge.Report{}, 0, fmt.Errorf("create output dir: %w", err)
	}
	if err := preflight.Failed(preflight.RunAll(r.cfg, "", opts.OutputDir)); err != nil {
		return merge.Report{}, 0, err
	}
	scratch.CleanLists(ctx, r.cfg.Paths.ScratchDir, staleScratchAge, s.logger)
	scratch.CleanPartials(ctx, opts.OutputDir, staleScratchAge, s.logger)
	if len(chains) == 0 {
		s.logger.Info("no chains to merge")
		return merge.Report{}, 0, nil
	}
	concat, inspector, err := r.mergeTools()
	if err != nil {
		return merge.Report{}, 0, err
	}

	orch := merge.NewOrchestrator(concat, inspector, r.cfg.Paths.ScratchDir, s.logger)
	report, mergeErr := orch.Merge(ctx, chains, opts)

	pruned, err := r.pruneDeleted(ctx, s, report)
	if err != nil {
		return report, pruned, errors.Join(mergeErr, err)
	}
	return report, pruned, mergeErr
}

// pruneDeleted drops chains whose originals were removed from the registry,
// since they can never be merged again.
func (r *Runner) pruneDeleted(ctx context.Context, s *session, report merge.Report) (int, error) {
	gone := make(map[string]struct{})
	for _, res := range report.Results {
		if res.Deleted > 0 && len(res.Members) > 0 {
			gone[res.Members[0]] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}
	kept := s.state.Chains[:0:0]
	for _, c := range s.state.Chains {
		if _, ok := gone[c.First()]; ok {
			continue
		}
		kept = append(kept, c)
	}
	pruned := len(s.state.Chains) - len(kept)
	s.state.Chains = kept
	if err := s.store.SaveChains(ctx, kept); err != nil {
		return 0, fmt.Errorf("persist chain registry: %w", err)
	}
	s.logger.Info("merged chains removed from registry", logging.Int("removed", pruned))
	return pruned, nil
}

// ReadClock reads one window of path, for diagnostics. It takes no lock.
func (r *Runner) ReadClock(ctx context.Context, path string, window int) (timecode.Reading, error) {
	reader, err := r.timeReader()
	if err != nil {
		return "", err
	}
	return reader.ReadTime(ctx, path, window)
}

// LoadState returns the persisted state and where it lives. It takes no lock.
func (r *Runner) LoadState(ctx context.Context) (*state.State, string, error) {
	store, err := state.Open(r.cfg)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = store.Close() }()
	st, err := store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	return st, store.Location(), nil
}

// ResetState clears the processed set and registry under the state lock.
func (r *Runner) ResetState(ctx context.Context) error {
	_, err := r.withSession(ctx, func(s *session) error {
		if err := s.store.Reset(ctx); err != nil {
			return err
		}
		s.logger.Info("state reset", logging.String("location", s.store.Location()))
		return nil
	})
	return err
}

func (r *Runner) timeReader() (chain.TimeReader, error) {
	if r.reader != nil {
		return r.reader, nil
	}
	if !r.skipTools {
		if err := deps.RequireTools(r.cfg.Tools); err != nil {
			return nil, err
		}
	}
	source := frames.NewFFmpegSource(r.cfg.Tools.FFmpeg, r.cfg.Tools.FFprobe)
	engine := ocr.NewTesseract(r.cfg.Tools.Tesseract, r.cfg.Overlay.AllowedChars, r.cfg.Overlay.PageSegMode)
	reporter := progress.New(r.cfg.Logging.Progress, r.logger, r.progressOut)
	r.reader = overlay.NewReader(source, engine, r.cfg.Overlay.Region(), reporter, r.logger)
	return r.reader, nil
}

func (r *Runner) mergeTools() (merge.Concatenator, merge.Inspector, error) {
	concat, inspector := r.concat, r.inspector
	if (concat == nil || inspector == nil) && !r.skipTools {
		if err := deps.Require(deps.MergeRequirements(r.cfg.Tools)); err != nil {
			return nil, nil, err
		}
	}
	if concat == nil {
		concat = merge.NewFFmpegConcat(r.cfg.Tools.FFmpeg)
	}
	if inspector == nil {
		inspector = merge.FFprobeInspector{Binary: r.cfg.Tools.FFprobe}
	}
	return concat, inspector, nil
}
