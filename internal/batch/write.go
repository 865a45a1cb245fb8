package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/transform"
)

// DomainOutput is the domain prefix for output digests.
// Version suffix enables future algorithm migration.
const DomainOutput = "stridefix/output/v1"

// Digest computes the content address of an encoded output.
// Format: SHA256(domain + 0x00 + data), hex encoded.
func Digest(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainOutput))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Output describes one encoded fixture destined for a family directory.
type Output struct {
	Fixture string           `json:"fixture"`
	Family  transform.Family `json:"family"`
	Path    string           `json:"path"`
	Digest  string           `json:"digest"`
	Size    int              `json:"size"`
}

// Writer persists encoded fixtures under Root/<family>/<name>.
type Writer struct {
	Root string
	// DryRun encodes and digests outputs without touching the filesystem.
	DryRun bool
}

// Path returns the output path for a fixture in a family.
func (w *Writer) Path(family transform.Family, name string) string {
	return filepath.Join(w.Root, string(family), name)
}

// Write encodes obj and stores it as the family's copy of the named fixture,
// creating the family directory if needed.
func (w *Writer) Write(family transform.Family, name string, obj *fixture.Object) (Output, error) {
	data, err := fixture.Encode(obj)
	if err != nil {
		return Output{}, fmt.Errorf("encode: %w", err)
	}

	out := Output{
		Fixture: name,
		Family:  family,
		Path:    w.Path(family, name),
		Digest:  Digest(data),
		Size:    len(data),
	}
	if w.DryRun {
		return out, nil
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return Output{}, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(out.Path, data, 0o644); err != nil {
		return Output{}, fmt.Errorf("write output: %w", err)
	}
	return out, nil
}
