package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when a requested run is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is one invocation of the generate command.
type Run struct {
	ID        string   `json:"id"`
	Seq       int64    `json:"seq"`
	InputDir  string   `json:"input_dir"`
	OutputDir string   `json:"output_dir"`
	Families  []string `json:"families"` // empty means all families
	Status    string   `json:"status"`

	Counts `json:",inline"`
}

// Counts are the totals of a finished run.
type Counts struct {
	Loaded      int `json:"loaded"`
	LoadErrors  int `json:"load_errors"`
	Written     int `json:"written"`
	Declined    int `json:"declined"`
	WriteErrors int `json:"write_errors"`
}

// BeginRun inserts a new running run and returns it with ID and Seq set.
// run.ID is generated when empty.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	run.Status = StatusRunning
	run.Counts = Counts{}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, input_dir, output_dir, families, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.InputDir, run.OutputDir, strings.Join(run.Families, ","), run.Status)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counts of a run and marks it finished.
func (s *Store) FinishRun(ctx context.Context, id string, counts Counts) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, loaded = ?, load_errors = ?, written = ?, declined = ?, write_errors = ?
		WHERE id = ?
	`, StatusFinished, counts.Loaded, counts.LoadErrors, counts.Written, counts.Declined, counts.WriteErrors, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// FailRun marks a run that stopped before producing a summary.
func (s *Store) FailRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ? WHERE id = ?`, StatusFailed, id)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("fail run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

const runColumns = `id, seq, input_dir, output_dir, families, status, loaded, load_errors, written, declined, write_errors`

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// LatestRun returns the finished run with the highest seq. Runs still
// running or failed are passed over.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE status = ?
		ORDER BY seq DESC
		LIMIT 1
	`, StatusFinished)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns every run in seq order.
// Returns an empty slice (not nil) for an empty ledger.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		families string
	)
	err := row.Scan(&run.ID, &run.Seq, &run.InputDir, &run.OutputDir, &families, &run.Status,
		&run.Loaded, &run.LoadErrors, &run.Written, &run.Declined, &run.WriteErrors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Families = []string{}
	if families != "" {
		run.Families = strings.Split(families, ",")
	}
	return run, nil
}
