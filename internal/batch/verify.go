package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/roach88/stridefix/internal/transform"
)

// Mismatch reasons reported by Verify.
const (
	ReasonMissing    = "missing"    // recorded output file no longer exists
	ReasonModified   = "modified"   // file on disk no longer matches the recorded digest
	ReasonDrifted    = "drifted"    // regenerating from current inputs gives a different digest
	ReasonDropped    = "dropped"    // recorded output is no longer produced
	ReasonUnrecorded = "unrecorded" // output produced now that the run did not record
)

// Mismatch is one output that failed verification.
type Mismatch struct {
	Fixture string           `json:"fixture"`
	Family  transform.Family `json:"family"`
	Path    string           `json:"path"`
	Reason  string           `json:"reason"`
}

// VerifyReport is the result of comparing a recorded run with the current
// inputs and outputs.
type VerifyReport struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether every output verified.
func (r *VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

type outputKey struct {
	fixture string
	family  transform.Family
}

// Verify regenerates opts in memory and compares the result with recorded,
// the outputs of an earlier run over the same options. Each recorded output
// must still exist on disk with its recorded digest, and regenerating it
// must reproduce that digest.
func Verify(ctx context.Context, opts Options, recorded []Output, logger *zap.Logger) (*VerifyReport, error) {
	opts.DryRun = true
	if logger == nil {
		logger = zap.NewNop()
	}

	current, err := Generate(ctx, opts, logger, nil)
	if err != nil {
		return nil, err
	}

	regenerated := make(map[outputKey]Output, len(current.Outputs))
	for _, out := range current.Outputs {
		regenerated[outputKey{out.Fixture, out.Family}] = out
	}

	report := &VerifyReport{Mismatches: []Mismatch{}}
	seen := make(map[outputKey]bool, len(recorded))
	for _, want := range recorded {
		key := outputKey{want.Fixture, want.Family}
		seen[key] = true
		report.Checked++

		if reason := checkOutput(want, regenerated); reason != "" {
			logger.Warn("output failed verification",
				zap.String("fixture", want.Fixture),
				zap.String("family", string(want.Family)),
				zap.String("reason", reason))
			report.Mismatches = append(report.Mismatches, Mismatch{
				Fixture: want.Fixture,
				Family:  want.Family,
				Path:    want.Path,
				Reason:  reason,
			})
		}
	}

	for _, out := range current.Outputs {
		if seen[outputKey{out.Fixture, out.Family}] {
			continue
		}
		report.Mismatches = append(report.Mismatches, Mismatch{
			Fixture: out.Fixture,
			Family:  out.Family,
			Path:    out.Path,
			Reason:  ReasonUnrecorded,
		})
	}

	return report, nil
}

// checkOutput returns the reason want fails verification, or "".
func checkOutput(want Output, regenerated map[outputKey]Output) string {
	data, err := os.ReadFile(want.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return ReasonMissing
	}
	if err != nil || Digest(data) != want.Digest {
		return ReasonModified
	}

	got, ok := regenerated[outputKey{want.Fixture, want.Family}]
	if !ok {
		return ReasonDropped
	}
	if got.Digest != want.Digest {
		return ReasonDrifted
	}
	return ""
}
