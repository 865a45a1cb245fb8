package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stridefix/internal/testutil"
)

// createTestStore creates a new store in a temp directory with sequential run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "outputs"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/ledger.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.expected))
		})
	}
}

func TestOpen_MigrationCreatesPathIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_outputs_path'",
	).Scan(&name)
	require.NoError(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestBeginRun_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.BeginRun(ctx, Run{InputDir: "in", OutputDir: "out", Families: []string{"offsets"}})
	require.NoError(t, err)
	second, err := s.BeginRun(ctx, Run{InputDir: "in", OutputDir: "out"})
	require.NoError(t, err)

	assert.Equal(t, "run-0001", first.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, StatusRunning, first.Status)
	assert.Equal(t, "run-0002", second.ID)
	assert.Equal(t, int64(2), second.Seq)
}

func TestBeginRun_KeepsExplicitID(t *testing.T) {
	s := createTestStore(t)

	run, err := s.BeginRun(context.Background(), Run{ID: "custom", InputDir: "."})
	require.NoError(t, err)
	assert.Equal(t, "custom", run.ID)
}

func TestBeginRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.BeginRun(ctx, Run{ID: "dup"})
	require.NoError(t, err)
	_, err = s.BeginRun(ctx, Run{ID: "dup"})
	assert.Error(t, err)
}

func TestGetRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	begun, err := s.BeginRun(ctx, Run{
		InputDir:  "fixtures",
		OutputDir: "derived",
		Families:  []string{"offsets", "mixed_strides"},
	})
	require.NoError(t, err)

	counts := Counts{Loaded: 3, LoadErrors: 1, Written: 10, Declined: 2, WriteErrors: 0}
	require.NoError(t, s.FinishRun(ctx, begun.ID, counts))

	got, err := s.GetRun(ctx, begun.ID)
	require.NoError(t, err)
	assert.Equal(t, Run{
		ID:        begun.ID,
		Seq:       1,
		InputDir:  "fixtures",
		OutputDir: "derived",
		Families:  []string{"offsets", "mixed_strides"},
		Status:    StatusFinished,
		Counts:    counts,
	}, got)
}

func TestGetRun_EmptyFamilies(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	begun, err := s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)

	got, err := s.GetRun(ctx, begun.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Families)
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestFinishRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.FinishRun(context.Background(), "missing", Counts{})
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	for range 3 {
		run, err := s.BeginRun(ctx, Run{InputDir: "."})
		require.NoError(t, err)
		require.NoError(t, s.FinishRun(ctx, run.ID, Counts{Written: 1}))
	}

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-0003", latest.ID)
	assert.Equal(t, int64(3), latest.Seq)
}

func TestLatestRunSkipsUnfinishedRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	good, err := s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, good.ID, Counts{Written: 4}))

	failed, err := s.BeginRun(ctx, Run{InputDir: "./missing"})
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, failed.ID))

	_, err = s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, good.ID, latest.ID)
	assert.Equal(t, StatusFinished, latest.Status)

	got, err := s.GetRun(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)

	assert.ErrorIs(t, s.FailRun(ctx, "nope"), ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for range 2 {
		_, err := s.BeginRun(ctx, Run{InputDir: "."})
		require.NoError(t, err)
	}

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-0001", runs[0].ID)
	assert.Equal(t, "run-0002", runs[1].ID)
}

func TestRecordOutput_OrderedRead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)

	inputs := []Output{
		{RunID: run.ID, Fixture: "dgemv.json", Family: "offsets", Path: "offsets/dgemv.json", Digest: "d2", Size: 20},
		{RunID: run.ID, Fixture: "daxpy.json", Family: "offsets", Path: "offsets/daxpy.json", Digest: "d1", Size: 10},
		{RunID: run.ID, Fixture: "daxpy.json", Family: "large_strides", Path: "large_strides/daxpy.json", Digest: "d0", Size: 12},
	}
	for _, out := range inputs {
		require.NoError(t, s.RecordOutput(ctx, out))
	}

	got, err := s.ReadOutputs(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []Output{inputs[2], inputs[1], inputs[0]}, got)
}

func TestRecordOutput_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)

	out := Output{RunID: run.ID, Fixture: "a.json", Family: "offsets", Path: "p", Digest: "first", Size: 1}
	require.NoError(t, s.RecordOutput(ctx, out))
	out.Digest = "second"
	require.NoError(t, s.RecordOutput(ctx, out))

	got, err := s.ReadOutputs(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Digest)
}

func TestRecordOutput_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.RecordOutput(context.Background(), Output{RunID: "missing", Fixture: "a.json", Family: "offsets"})
	assert.Error(t, err, "foreign key should reject outputs for unknown runs")
}

func TestRecordOutput_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, Run{InputDir: "."})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := Output{
				RunID:   run.ID,
				Fixture: filepath.Join("f", string(rune('a'+i))) + ".json",
				Family:  "offsets",
			}
			assert.NoError(t, s.RecordOutput(ctx, out))
		}()
	}
	wg.Wait()

	got, err := s.ReadOutputs(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestReadOutputs_EmptyRun(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadOutputs(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
