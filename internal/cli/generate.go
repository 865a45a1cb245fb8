package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/stridefix/internal/batch"
	"github.com/roach88/stridefix/internal/store"
	"github.com/roach88/stridefix/internal/transform"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	OutputDir string
	Families  []string
	Jobs      int
	Database  string // optional run ledger
}

// GenerateResult is the payload of the generate command.
type GenerateResult struct {
	RunID string `json:"run_id,omitempty"`

	batch.Summary `json:",inline"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Write derived fixture families",
		Long: `Read every *.json fixture directly inside dir (default ".") and write
the derived families to offsets/, negative_strides/, large_strides/ and
mixed_strides/ under --out (default: dir).

Fixtures that fail to parse are reported and skipped. A family that does
not apply to a fixture writes nothing for it.

Exit codes:
  0 - All fixtures loaded and all outputs written
  1 - Some fixture failed to load or some output failed to write
  2 - Command error (missing directory, unknown family, etc.)

Examples:
  stridefix generate ./fixtures
  stridefix generate ./fixtures --out ./derived --family offsets
  stridefix generate ./fixtures --jobs 8 --db ./stridefix.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGenerate(cmd.Context(), opts, dir, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "", "output root (default: the input directory)")
	cmd.Flags().StringSliceVarP(&opts.Families, "family", "f", nil,
		fmt.Sprintf("families to generate, repeatable (default: all of %v)", transform.Families()))
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "fixtures processed in parallel")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite ledger")

	return cmd
}

func runGenerate(ctx context.Context, opts *GenerateOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout())

	if _, err := transform.Select(opts.Families); err != nil {
		return WrapExitError(ExitCommandError, "invalid --family", err)
	}
	if opts.Jobs < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs))
	}

	if err := batch.CheckDir(dir); err != nil {
		return loadFailure(formatter, opts, err)
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer func() { _ = logger.Sync() }()

	// The ledger is read back from other working directories.
	inputDir, err := filepath.Abs(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve fixture directory", err)
	}
	outputDir := inputDir
	if opts.OutputDir != "" {
		if outputDir, err = filepath.Abs(opts.OutputDir); err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve output directory", err)
		}
	}

	bopts := batch.Options{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Families:  opts.Families,
		Jobs:      opts.Jobs,
	}

	var (
		st       *store.Store
		run      store.Run
		recorder batch.Recorder
	)
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		run, err = st.BeginRun(ctx, store.Run{
			InputDir:  bopts.InputDir,
			OutputDir: bopts.OutputDir,
			Families:  opts.Families,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		recorder = &ledger{store: st, runID: run.ID}
	}

	summary, err := batch.Generate(ctx, bopts, logger, recorder)
	if err != nil {
		if st != nil {
			if ferr := st.FailRun(context.WithoutCancel(ctx), run.ID); ferr != nil {
				logger.Error("failed to mark run as failed", zap.String("run", run.ID), zap.Error(ferr))
			}
		}
		var loadErr *batch.LoadError
		if errors.As(err, &loadErr) {
			return loadFailure(formatter, opts, err)
		}
		return WrapExitError(ExitFailure, "generation failed", err)
	}

	if st != nil {
		if err := st.FinishRun(ctx, run.ID, countsOf(summary)); err != nil {
			return WrapExitError(ExitFailure, "failed to record run", err)
		}
	}

	result := GenerateResult{RunID: run.ID, Summary: *summary}
	text := func(w io.Writer) { printSummary(w, dir, result) }

	if summary.Failed() {
		msg := fmt.Sprintf("%d fixture(s) failed to load, %d output(s) failed to write",
			summary.LoadErrors, summary.WriteErrors)
		if err := formatter.Failure(failureCode(summary), msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	return formatter.Result(result, text)
}

// loadFailure reports a directory-level load error, which is a command
// error rather than a per-fixture failure.
func loadFailure(formatter *OutputFormatter, opts *GenerateOptions, err error) error {
	var loadErr *batch.LoadError
	if opts.Format == "json" && errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
	}
	return WrapExitError(ExitCommandError, "failed to load fixtures", err)
}

// failureCode picks the error code for a run with failures: write failures
// first, then unparseable fixtures, then non-object fixtures.
func failureCode(s *batch.Summary) string {
	if s.WriteErrors > 0 {
		return batch.ErrCodeWriteFailed
	}
	for _, sk := range s.Skipped {
		if sk.Code != batch.ErrCodeNotObject {
			return batch.ErrCodeParseFailed
		}
	}
	return batch.ErrCodeNotObject
}

func printSummary(w io.Writer, dir string, result GenerateResult) {
	s := result.Summary
	fmt.Fprintf(w, "Loaded %d fixture(s) from %s", s.Loaded, dir)
	if s.LoadErrors > 0 {
		fmt.Fprintf(w, " (%d skipped)", s.LoadErrors)
	}
	fmt.Fprintln(w)
	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "  skipped %s [%s]: %s\n", sk.File, sk.Code, sk.Error)
	}
	fmt.Fprintf(w, "Wrote %d file(s), %d declined", s.Written, s.Declined)
	if s.WriteErrors > 0 {
		fmt.Fprintf(w, ", %d failed", s.WriteErrors)
	}
	fmt.Fprintln(w)
	if result.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
	}
}

func countsOf(s *batch.Summary) store.Counts {
	return store.Counts{
		Loaded:      s.Loaded,
		LoadErrors:  s.LoadErrors,
		Written:     s.Written,
		Declined:    s.Declined,
		WriteErrors: s.WriteErrors,
	}
}

// ledger records batch outputs in the run ledger.
type ledger struct {
	store *store.Store
	runID string
}

func (l *ledger) RecordOutput(ctx context.Context, out batch.Output) error {
	return l.store.RecordOutput(ctx, store.Output{
		RunID:   l.runID,
		Fixture: out.Fixture,
		Family:  string(out.Family),
		Path:    out.Path,
		Digest:  out.Digest,
		Size:    out.Size,
	})
}
