package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders every outcome of a result as one text document:
// a "## <family>" header per family followed by its output, or "declined".
func Snapshot(result *Result) []byte {
	var buf bytes.Buffer
	for i, oc := range result.Outcomes {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "## %s\n", oc.Family)
		if oc.Declined {
			buf.WriteString("declined\n")
			continue
		}
		buf.WriteString(oc.Output)
	}
	return buf.Bytes()
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<base name without extension>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the result's snapshot to path, creating its directory.
func UpdateGolden(path string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Snapshot(result), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result's snapshot matches the golden
// file at path.
func CompareGolden(path string, result *Result) (bool, error) {
	golden, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, Snapshot(result)), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(result))

	return result, nil
}
