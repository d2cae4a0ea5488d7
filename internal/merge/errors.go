package merge

import "fmt"

// ParseError indicates the input bytes could not be read as a workbook with a
// tabular first sheet.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnError indicates a required column is absent from one of the
// uploaded files. File is the user-facing file label ("File A" or "File B").
type MissingColumnError struct {
	Column string
	File   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.File)
}

// ColumnConflictError indicates the target column already exists in the
// primary table, so the join would produce two columns with the same name.
type ColumnConflictError struct {
	Column string
}

func (e *ColumnConflictError) Error() string {
	return fmt.Sprintf("column %q already exists in File A", e.Column)
}

// SerializationError indicates the merged table could not be written back out
// as a workbook.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
