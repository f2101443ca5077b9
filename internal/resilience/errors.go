// Package resilience classifies failures from external collaborators and
// retries the transient ones.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrNotFound marks the expected, recoverable "record does not exist"
// outcome. Storage and provider lookups return it (wrapped) instead of
// overloading real errors; callers branch with IsNotFound.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err means the record simply was not there.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// TransientError marks an error as safe to retry (429, 5xx, network
// timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as transient, keeping the HTTP status code
// when one applies.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err should be retried: an explicit
// TransientError anywhere in the chain, a network timeout, or a
// connection-level failure. NotFound is never transient.
func IsTransient(err error) bool {
	if err == nil || IsNotFound(err) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped client errors lose their type; fall back to message patterns.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
