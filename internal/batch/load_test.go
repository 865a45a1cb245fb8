package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/testutil"
)

func TestLoadDir(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"b.json":         `{"x": [1, 2]}`,
		"a.json":         `{"y": [3]}`,
		"notes.txt":      `not a fixture`,
		"data.JSON":      `{"z": [4]}`,
		"offsets/a.json": `{"old": "output"}`,
	})

	result, errs := LoadDir(dir)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "a.json", result.Records[0].Name)
	assert.Equal(t, "b.json", result.Records[1].Name)
}

func TestLoadDirSkipsMalformedFiles(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"good.json":  `{"x": [1]}`,
		"bad.json":   `{"x": [1,`,
		"array.json": `[1, 2, 3]`,
	})

	result, errs := LoadDir(dir)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.FileCount)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "good.json", result.Records[0].Name)

	require.Len(t, errs, 2)
	codes := map[string]string{}
	for _, err := range errs {
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Contains(t, err.Error(), loadErr.File)
		codes[loadErr.File] = loadErr.Code
	}
	assert.Equal(t, map[string]string{
		"array.json": ErrCodeNotObject,
		"bad.json":   ErrCodeParseFailed,
	}, codes)
	assert.ErrorIs(t, errs[0], fixture.ErrNotObject)
}

func TestLoadDirUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := testutil.WriteFiles(t, map[string]string{"locked.json": `{}`})
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.json"), 0o000))

	result, errs := LoadDir(dir)
	require.NotNil(t, result)
	assert.Empty(t, result.Records)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "locked.json")
}

func TestLoadDirEmpty(t *testing.T) {
	result, errs := LoadDir(t.TempDir())
	assert.Empty(t, errs)
	require.NotNil(t, result)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.FileCount)
}

func TestLoadDirNotFound(t *testing.T) {
	result, errs := LoadDir("/nonexistent/fixture/dir")
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, errs[0].Error(), "not found")
}

func TestLoadDirNotADirectory(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"a.json": `{}`})

	result, errs := LoadDir(filepath.Join(dir, "a.json"))
	assert.Nil(t, result)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not a directory")
}

func TestCheckDir(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"a.json": `{}`})

	assert.NoError(t, CheckDir(dir))

	for _, path := range []string{filepath.Join(dir, "missing"), filepath.Join(dir, "a.json")} {
		var loadErr *LoadError
		require.ErrorAs(t, CheckDir(path), &loadErr)
		assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	}
}
