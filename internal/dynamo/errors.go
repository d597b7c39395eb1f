package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for bubble field operations.
var (
	// ErrEmptyRegistry indicates a spawn was requested while the content pool is empty.
	ErrEmptyRegistry = errors.New("dynamo: content registry is empty")

	// ErrNoContentAvailable indicates every content item is currently displayed.
	ErrNoContentAvailable = errors.New("dynamo: no content available for selection")

	// ErrBubbleNotFound indicates a bubble id that is not in the active set.
	ErrBubbleNotFound = errors.New("dynamo: bubble not found")

	// ErrUnknownParam indicates a configuration option name that does not exist.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// ParamError wraps a parameter failure with the offending option name.
type ParamError struct {
	Name    string
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("param %q: %v", e.Name, e.Wrapped)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
