package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/transform"
)

func TestWriterCreatesFamilyDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "out")
	w := &Writer{Root: root}
	obj := fixture.NewObjectFromPairs(fixture.P("x", fixture.Array{fixture.Number(1)}))

	out, err := w.Write(transform.FamilyOffsets, "dcopy.json", obj)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "offsets", "dcopy.json"), out.Path)
	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"x\": [\n    1\n  ]\n}\n", string(data))
	assert.Equal(t, Digest(data), out.Digest)
	assert.Equal(t, len(data), out.Size)
}

func TestWriterDryRun(t *testing.T) {
	root := t.TempDir()
	w := &Writer{Root: root, DryRun: true}

	out, err := w.Write(transform.FamilyLargeStrides, "a.json", fixture.NewObject())
	require.NoError(t, err)
	assert.Equal(t, Digest([]byte("{}\n")), out.Digest)

	_, err = os.Stat(out.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriterFailsWhenFamilyPathIsAFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "offsets"), []byte("x"), 0o644))
	w := &Writer{Root: root}

	_, err := w.Write(transform.FamilyOffsets, "a.json", fixture.NewObject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output directory")
}

func TestDigestDomainSeparation(t *testing.T) {
	data := []byte("{}\n")
	assert.Len(t, Digest(data), 64)
	assert.Equal(t, Digest(data), Digest([]byte("{}\n")))
	assert.NotEqual(t, Digest(data), Digest([]byte("{}")))
}
