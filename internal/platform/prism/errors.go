package prism

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidCredentials is returned by Connect when the platform rejects
// the configured username/password.
var ErrInvalidCredentials = errors.New("invalid platform credentials")

// UnreachableError wraps a transport-level failure: the platform endpoint
// could not be reached at all. It is fatal for a run.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("platform unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err is a transport or authentication
// failure, as opposed to a platform-reported task failure.
func IsUnreachable(err error) bool {
	var unreachable *UnreachableError
	return errors.As(err, &unreachable) || errors.Is(err, ErrInvalidCredentials)
}

// StatusError is an API response with an unexpected HTTP status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
