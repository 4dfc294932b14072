package dataset

import (
	"errors"
	"fmt"
)

// Errors returned while loading a dataset.
var (
	// ErrEmptySource indicates that no dataset path or URL was configured.
	ErrEmptySource = errors.New("no dataset source configured")

	// ErrNotFound indicates the dataset file or URL does not exist.
	ErrNotFound = errors.New("dataset not found")

	// ErrRateLimited indicates the remote source kept answering 429.
	ErrRateLimited = errors.New("dataset source rate limit exceeded")

	// ErrFetch indicates a network or HTTP failure fetching a remote dataset.
	ErrFetch = errors.New("fetching dataset failed")
)

// LoadError wraps any failure to obtain or decode the raw dataset.
// It is the error shown on the loading surface.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("loading dataset: %v", e.Err)
	}
	return fmt.Sprintf("loading dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing dataset.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
