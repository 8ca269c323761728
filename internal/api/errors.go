package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	// ErrNoCredential is returned when a call is attempted without a token.
	ErrNoCredential = errors.New("no API credential configured, run 'ogdash login'")

	// ErrDecode wraps a response body that is not the expected JSON.
	ErrDecode = errors.New("malformed response body")

	// ErrInvalidRequest wraps client-side request validation failures.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMissingParameter is returned when a required parameter is empty.
	ErrMissingParameter = fmt.Errorf("%w: missing required parameter", ErrInvalidRequest)

	errInvertedRange = fmt.Errorf("%w: end time before start time", ErrInvalidRequest)

	// ErrServerTooOld is returned by CheckServerVersion.
	ErrServerTooOld = errors.New("server version below minimum")
)

// APIError is a non-2xx response.
//
//nolint:revive // APIError is the conventional name.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
