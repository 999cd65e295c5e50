package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below via errors.Is.
var (
	ErrMissingFile = errors.New("input file does not exist")
	ErrSchema      = errors.New("schema mismatch")
)

// MissingFileError is returned when an input path does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFile, e.Path)
}

// Is reports ErrMissingFile.
func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingFile
}

// SchemaError is returned when required columns are absent or a column
// clashes with a derived output column.
type SchemaError struct {
	Path      string
	Missing   []string
	Conflicts []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Conflicts) > 0 {
		parts = append(parts, "conflicting columns: "+strings.Join(e.Conflicts, ", "))
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchema, e.Path, strings.Join(parts, "; "))
}

// Is reports ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
