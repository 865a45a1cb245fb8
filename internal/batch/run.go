package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/transform"
)

// Options controls a generation run.
type Options struct {
	// InputDir is scanned for fixtures. Defaults to ".".
	InputDir string
	// OutputDir receives the family directories. Defaults to InputDir.
	OutputDir string
	// Families selects which transforms run. Empty selects all.
	Families []string
	// Jobs bounds how many fixtures are processed at once. Values below 1
	// mean sequential processing.
	Jobs int
	// DryRun computes outputs and digests without writing files.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.InputDir == "" {
		o.InputDir = "."
	}
	if o.OutputDir == "" {
		o.OutputDir = o.InputDir
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	return o
}

// Recorder receives every output that was successfully produced.
// Implementations must be safe for concurrent use when Jobs > 1.
type Recorder interface {
	RecordOutput(ctx context.Context, out Output) error
}

// Summary reports what a run did.
type Summary struct {
	Loaded      int       `json:"loaded"`
	LoadErrors  int       `json:"load_errors"`
	Written     int       `json:"written"`
	Declined    int       `json:"declined"`
	WriteErrors int       `json:"write_errors"`
	Skipped     []Skipped `json:"skipped"`
	Outputs     []Output  `json:"outputs"`
}

// Skipped is a fixture file that could not be loaded. Code separates files
// that are not JSON (E004) from JSON documents that are not objects (E003).
type Skipped struct {
	File  string `json:"file"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Failed reports whether any fixture or output was skipped due to an error.
func (s *Summary) Failed() bool {
	return s.LoadErrors > 0 || s.WriteErrors > 0
}

// Runner applies transforms to fixtures and writes the results.
type Runner struct {
	logger       *zap.Logger
	recorder     Recorder
	transformers []transform.Transformer
	writer       *Writer
	jobs         int
}

// tally accumulates a Summary across concurrent workers.
type tally struct {
	mu      sync.Mutex
	summary *Summary
}

func (t *tally) add(fn func(*Summary)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.summary)
}

// NewRunner creates a Runner for opts. recorder may be nil.
func NewRunner(opts Options, logger *zap.Logger, recorder Recorder) (*Runner, error) {
	opts = opts.withDefaults()

	transformers, err := transform.Select(opts.Families)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		logger:       logger,
		recorder:     recorder,
		transformers: transformers,
		writer:       &Writer{Root: opts.OutputDir, DryRun: opts.DryRun},
		jobs:         opts.Jobs,
	}, nil
}

// Run processes records and returns a summary sorted by fixture name and
// family. Per-output write failures are logged and counted, not returned.
// The returned error is non-nil only if ctx is cancelled or the recorder
// fails.
func (r *Runner) Run(ctx context.Context, records []fixture.Record) (*Summary, error) {
	tl := &tally{summary: &Summary{Loaded: len(records), Skipped: []Skipped{}, Outputs: []Output{}}}
	summary := tl.summary

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for _, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.processRecord(gctx, rec, tl)
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	order := make(map[transform.Family]int, len(r.transformers))
	for i, t := range r.transformers {
		order[t.Family()] = i
	}
	slices.SortFunc(summary.Outputs, func(a, b Output) int {
		return cmp.Or(
			cmp.Compare(a.Fixture, b.Fixture),
			cmp.Compare(order[a.Family], order[b.Family]),
		)
	})

	return summary, nil
}

// processRecord runs every transformer over one fixture.
func (r *Runner) processRecord(ctx context.Context, rec fixture.Record, tl *tally) error {
	for _, t := range r.transformers {
		if err := ctx.Err(); err != nil {
			return err
		}

		family := t.Family()
		obj, ok := t.Apply(rec)
		if !ok {
			r.logger.Debug("transform declined fixture",
				zap.String("fixture", rec.Name),
				zap.String("family", string(family)))
			tl.add(func(s *Summary) { s.Declined++ })
			continue
		}

		out, err := r.writer.Write(family, rec.Name, obj)
		if err != nil {
			werr := &WriteError{Fixture: rec.Name, Family: string(family), Err: err}
			r.logger.Error("failed to write fixture",
				zap.String("fixture", rec.Name),
				zap.String("family", string(family)),
				zap.Error(werr))
			tl.add(func(s *Summary) { s.WriteErrors++ })
			continue
		}

		if r.recorder != nil {
			if err := r.recorder.RecordOutput(ctx, out); err != nil {
				return fmt.Errorf("record %s/%s: %w", family, rec.Name, err)
			}
		}

		r.logger.Debug("wrote fixture",
			zap.String("fixture", rec.Name),
			zap.String("family", string(family)),
			zap.String("path", out.Path))
		tl.add(func(s *Summary) {
			s.Written++
			s.Outputs = append(s.Outputs, out)
		})
	}
	return nil
}

// Generate loads opts.InputDir and runs every selected transform over it.
//
// Directory-level load failures are returned as a *LoadError. Per-file load
// failures are logged, counted in Summary.LoadErrors, and skipped.
func Generate(ctx context.Context, opts Options, logger *zap.Logger, recorder Recorder) (*Summary, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	runner, err := NewRunner(opts, logger, recorder)
	if err != nil {
		return nil, err
	}

	loaded, loadErrs := LoadDir(opts.InputDir)
	if loaded == nil {
		return nil, loadErrs[0]
	}

	skipped := make([]Skipped, 0, len(loadErrs))
	for _, err := range loadErrs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			logger.Error("failed to load fixture",
				zap.String("file", loadErr.File),
				zap.String("code", loadErr.Code),
				zap.Error(loadErr.Err))
			skipped = append(skipped, Skipped{File: loadErr.File, Code: loadErr.Code, Error: loadErr.Err.Error()})
			continue
		}
		logger.Error("failed to load fixture", zap.Error(err))
		skipped = append(skipped, Skipped{Code: ErrCodeGeneric, Error: err.Error()})
	}
	logger.Info("loaded fixtures",
		zap.String("dir", opts.InputDir),
		zap.Int("files", loaded.FileCount),
		zap.Int("loaded", len(loaded.Records)))

	summary, err := runner.Run(ctx, loaded.Records)
	if summary != nil {
		summary.LoadErrors = len(loadErrs)
		summary.Skipped = skipped
	}
	return summary, err
}
