package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single article lookup finds nothing.
	ErrNotFound = errors.New("not found")

	// ErrSelectionLimitExceeded is returned when a topic is picked while the
	// selection is already full.
	ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
)

// NetworkError is a transport failure or non-2xx response from the article resource.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports user input that cannot be submitted as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
