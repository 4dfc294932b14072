package graph

import "fmt"

// MalformedDatasetError is returned by Normalize when a record has no usable
// identity. It aborts the whole load.
type MalformedDatasetError struct {
	Index  int    // Zero-based record position
	Title  string // Record title, for context
	Reason string
}

func (e *MalformedDatasetError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("malformed dataset: record %d (%q): %s", e.Index, e.Title, e.Reason)
	}
	return fmt.Sprintf("malformed dataset: record %d: %s", e.Index, e.Reason)
}
