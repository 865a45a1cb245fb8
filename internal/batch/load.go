package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/stridefix/internal/fixture"
)

// FixtureExt is the extension a file needs to be picked up as a fixture.
const FixtureExt = ".json"

// LoadResult contains the fixtures loaded from a directory.
type LoadResult struct {
	Dir       string
	Records   []fixture.Record // sorted by Name
	FileCount int              // fixture files found, including ones that failed
}

// LoadDir loads every *.json file directly inside dir.
//
// A nil result means dir itself could not be used; the single error says
// why. Otherwise the error slice holds one *LoadError per file that could
// not be read or parsed, and those files are absent from Records.
// An empty directory is not an error.
func LoadDir(dir string) (*LoadResult, []error) {
	if err := CheckDir(dir); err != nil {
		return nil, []error{err}
	}

	paths, err := FindFixtureFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: "error scanning directory", Err: err}}
	}

	result := &LoadResult{Dir: dir, FileCount: len(paths)}
	var errs []error
	for _, path := range paths {
		rec, err := fixture.ReadRecord(path)
		if err != nil {
			code := ErrCodeParseFailed
			if errors.Is(err, fixture.ErrNotObject) {
				code = ErrCodeNotObject
			}
			errs = append(errs, &LoadError{
				Code:    code,
				File:    filepath.Base(path),
				Message: "skipping fixture",
				Err:     err,
			})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, errs
}

// CheckDir returns a *LoadError with code E005 unless dir is an existing
// directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixture directory not found: %s", dir)}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeNotFound, Message: "error accessing fixture directory", Err: err}
	}
	if !info.IsDir() {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	return nil
}

// FindFixtureFiles returns the paths of the fixture files directly inside
// dir, sorted by name. Subdirectories are not descended into, so earlier
// output families are never picked up as input.
func FindFixtureFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != FixtureExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}
