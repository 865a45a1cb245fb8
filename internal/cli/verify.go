package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/stridefix/internal/batch"
	"github.com/roach88/stridefix/internal/store"
	"github.com/roach88/stridefix/internal/transform"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
}

// VerifyResult is the payload of the verify command.
type VerifyResult struct {
	RunID string `json:"run_id"`

	batch.VerifyReport `json:",inline"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check generated files against a recorded run",
		Long: `Regenerate a recorded run in memory and check that every output file
still exists, still has its recorded digest, and is reproduced exactly
from the current fixtures.

Exit codes:
  0 - Every output verified
  1 - One or more outputs are missing, modified or no longer reproducible
  2 - Command error (database not found, unknown run, etc.)

Examples:
  stridefix verify --db ./stridefix.db
  stridefix verify --db ./stridefix.db --run 01927d6e-...
  stridefix verify --db ./stridefix.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to verify (default: latest)")

	return cmd
}

func runVerify(ctx context.Context, opts *VerifyOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var run store.Run
	if opts.RunID != "" {
		run, err = st.GetRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "no such run", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	rows, err := st.ReadOutputs(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read outputs", err)
	}
	recorded := make([]batch.Output, len(rows))
	for i, row := range rows {
		recorded[i] = batch.Output{
			Fixture: row.Fixture,
			Family:  transform.Family(row.Family),
			Path:    row.Path,
			Digest:  row.Digest,
			Size:    row.Size,
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer func() { _ = logger.Sync() }()

	report, err := batch.Verify(ctx, batch.Options{
		InputDir:  run.InputDir,
		OutputDir: run.OutputDir,
		Families:  run.Families,
	}, recorded, logger)
	if err != nil {
		var loadErr *batch.LoadError
		if errors.As(err, &loadErr) {
			return WrapExitError(ExitCommandError, "failed to load fixtures", err)
		}
		return WrapExitError(ExitFailure, "verification failed", err)
	}

	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout())
	result := VerifyResult{RunID: run.ID, VerifyReport: *report}
	text := func(w io.Writer) { printVerifyResult(w, result) }

	if !report.OK() {
		msg := fmt.Sprintf("%d output(s) failed verification", len(report.Mismatches))
		if err := formatter.Failure("E_VERIFY_FAILED", msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Result(result, text)
}

// openExistingStore opens a ledger that must already exist; store.Open
// alone would create an empty one.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func printVerifyResult(w io.Writer, result VerifyResult) {
	fmt.Fprintf(w, "Run %s: %d output(s) checked\n", result.RunID, result.Checked)
	for _, m := range result.Mismatches {
		fmt.Fprintf(w, "✗ %s/%s: %s\n", m.Family, m.Fixture, m.Reason)
	}
	if result.OK() {
		fmt.Fprintln(w, "✓ All outputs verified")
	}
}
