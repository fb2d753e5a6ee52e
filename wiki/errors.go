package wiki

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a wiki response with an unexpected HTTP status. Any
// non-200 aborts the resolution it occurred in; partial results are
// discarded.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wiki: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// RequestError wraps a transport-level failure.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("wiki: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsStatusError reports whether err carries an HTTP status code, and which.
func IsStatusError(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}
