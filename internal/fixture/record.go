package fixture

import (
	"fmt"
	"os"
	"path/filepath"
)

// Record is a parsed fixture file.
// Fields is never mutated after loading; transforms work on Clone().
type Record struct {
	// Name is the source file's base name, reused for every output file.
	Name string
	// Fields holds the top-level JSON object.
	Fields *Object
}

// Clone returns a deep copy of the record's fields.
func (r Record) Clone() *Object {
	return r.Fields.Clone()
}

// ReadRecord reads and parses the fixture at path.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	obj, err := DecodeObject(data)
	if err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return Record{Name: filepath.Base(path), Fields: obj}, nil
}
