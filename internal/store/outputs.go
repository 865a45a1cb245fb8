package store

import (
	"context"
	"fmt"
)

// Output is one file a run wrote.
type Output struct {
	RunID   string `json:"run_id"`
	Fixture string `json:"fixture"`
	Family  string `json:"family"`
	Path    string `json:"path"`
	Digest  string `json:"digest"`
	Size    int    `json:"size"`
}

// RecordOutput inserts an output row.
// Uses ON CONFLICT DO NOTHING for idempotency - recording the same
// (run, family, fixture) twice keeps the first row.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) RecordOutput(ctx context.Context, out Output) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outputs (run_id, fixture, family, path, digest, size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, out.RunID, out.Fixture, out.Family, out.Path, out.Digest, out.Size)
	if err != nil {
		return fmt.Errorf("record output: %w", err)
	}
	return nil
}

// ReadOutputs returns the outputs of a run ordered by fixture then family.
// Returns an empty slice (not nil) if the run recorded nothing.
func (s *Store) ReadOutputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, fixture, family, path, digest, size
		FROM outputs
		WHERE run_id = ?
		ORDER BY fixture COLLATE BINARY ASC, family COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []Output{}
	for rows.Next() {
		var out Output
		if err := rows.Scan(&out.RunID, &out.Fixture, &out.Family, &out.Path, &out.Digest, &out.Size); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}
