package collab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUploadRejected is reported when the backend answers an upload with
	// success=false.
	ErrUploadRejected = errors.New("collab: upload rejected")
	// ErrMissingFilename is returned when an export has no source filename.
	ErrMissingFilename = errors.New("collab: filename is required")
	// ErrEndpointMissing is returned when the contract lacks an operation.
	ErrEndpointMissing = errors.New("collab: endpoint missing from contract")
	// ErrInvalidRequest marks calls that failed before reaching the backend
	// because the request itself could not be built.
	ErrInvalidRequest = errors.New("collab: invalid request")
)

// Error wraps a failed collaborator call. StatusCode is zero when no HTTP
// response was received.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("collab: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("collab: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether repeating the call could succeed.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch {
	case errors.Is(e.Err, context.Canceled),
		errors.Is(e.Err, ErrInvalidRequest),
		errors.Is(e.Err, ErrUploadRejected),
		errors.Is(e.Err, ErrMissingFilename):
		return false
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func invalidRequest(op string, err error) *Error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
}

// IsRetryable unwraps err looking for a retryable *Error.
func IsRetryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable()
	}
	return false
}
