package benchmark

import (
	"errors"
	"fmt"
)

// ErrEmptyResult indicates an aggregation collected no rows. Nothing is written.
var ErrEmptyResult = errors.New("no rows collected")

// MissingFileError records an expected per-(dataset, tool) file that is absent.
// It is never fatal: the pair contributes nothing.
type MissingFileError struct {
	Dataset string
	Tool    string
	Path    string
}

func (e *MissingFileError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("file not found for dataset %s: %s", e.Dataset, e.Path)
	}
	return fmt.Sprintf("file not found for dataset %s, tool %s: %s", e.Dataset, e.Tool, e.Path)
}

// MissingRequiredColumnError indicates a per-tool joined file lacks a column the
// compound table cannot be built without.
type MissingRequiredColumnError struct {
	Path   string
	Column string
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Path)
}
