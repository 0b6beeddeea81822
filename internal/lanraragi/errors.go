package lanraragi

import (
	"errors"
	"fmt"
)

// Sentinel errors for server responses the caller may want to branch on.
var (
	ErrUnauthorized = errors.New("lanraragi: unauthorized (check API key)")
	ErrNotFound     = errors.New("lanraragi: not found")
)

// StatusError reports an unexpected HTTP status from the server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("lanraragi: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("lanraragi: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Error wraps an underlying error with the failed operation and, when
// applicable, the archive or job id involved.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("lanraragi %s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("lanraragi %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
