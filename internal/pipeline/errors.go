package pipeline

import "fmt"

// IoError reports that the source file could not be opened or read.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a row that does not conform to the schema.
// Line is 1-based and counts the header row.
type SchemaMismatchError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: column %q (value %q): %s", e.Path, e.Line, e.Column, e.Value, e.Reason)
}
