package batch

import "fmt"

// Error code constants shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNotObject   = "E003" // Fixture parsed but its root is not an object
	ErrCodeParseFailed = "E004" // Fixture read or parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // Output write failed
)

// LoadError describes a fixture that could not be loaded.
// File is empty for directory-level errors.
type LoadError struct {
	Code    string
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// WriteError describes an output that could not be written.
type WriteError struct {
	Fixture string
	Family  string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s/%s: %s: %v", e.Family, e.Fixture, ErrCodeWriteFailed, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
