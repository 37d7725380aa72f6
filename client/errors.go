package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSubmitInFlight is returned by Submit while an earlier submission on the
// same client has not finished.
var ErrSubmitInFlight = errors.New("client: a review submission is already in flight")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a response that carried a failure envelope or a non-2xx
// status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// IsValidation reports whether the server rejected the input itself.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsNotFound reports whether the named resource, usually a service, does
// not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsTransient reports whether retrying the same request later may succeed:
// transport failures and server-side errors are, rejected input is not.
func IsTransient(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode >= http.StatusInternalServerError || ae.StatusCode == http.StatusTooManyRequests
	}
	return false
}
