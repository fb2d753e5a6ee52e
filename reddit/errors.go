// Package reddit is the HTTP client for the bot's reddit account: it owns
// the OAuth session (token plus rate-limit budget) and the inbox, mark-read
// and reply operations.
//
// Every outbound call follows the same protocol: Prepare (block while the
// rate budget is exhausted), issue the request with the current bearer token
// and the fixed user agent, then Update the budget from the response headers
// regardless of status.
package reddit

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication failures. Both are terminal for the
// current cycle.
var (
	// ErrUnauthorized indicates a bad client ID or secret.
	ErrUnauthorized = errors.New("reddit: unauthorized")

	// ErrBadCredentials indicates a bad account username or password. Reddit
	// reports this as a 200 whose body is not a usable login response.
	ErrBadCredentials = errors.New("reddit: bad account credentials")
)

// StatusError is any other non-success status from the reddit API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reddit: unexpected status %d", e.Code)
}

// RequestError is a transport-level failure talking to the reddit API.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("reddit: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsStatusError reports whether any error in err's chain is a StatusError,
// returning the offending status code.
func IsStatusError(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
