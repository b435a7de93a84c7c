package sources

import "fmt"

// SchemaError indicates a required source column is absent. It aborts the
// normalization of one dataset only.
type SchemaError struct {
	Dataset string
	File    string
	Column  string
}

func (e *SchemaError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("schema error: %s: required column %q not found", e.Dataset, e.Column)
	}
	return fmt.Sprintf("schema error: %s: required column %q not found in %s", e.Dataset, e.Column, e.File)
}
