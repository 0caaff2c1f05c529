package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a message, user or product id does not
	// resolve to a document.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized is returned when the acting user is not the sender
	// or recipient required for the operation.
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports malformed or rejected input: empty content,
// self-messaging, unknown recipient.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// UpstreamError wraps a failure of a backing store (users, products,
// messages). Callers surface it as a server error and do not retry.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
