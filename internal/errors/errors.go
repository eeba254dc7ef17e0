package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Default error at the handler level is an internal server error.
// Errors that map to a different status code use ErrorWithStatusCode.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ErrNotConfigured is returned by every operation of the null-object store
// client when backend credentials are absent. Consumers surface it as a static
// "not configured" notice instead of a retryable failure.
var ErrNotConfigured = errors.New("backend is not configured")

// NotFound distinguishes "the row does not exist" from transport failures so
// the UI can render a dedicated not-found message.
var NotFound = &ErrorWithStatusCode{Message: "Not found", StatusCode: http.StatusNotFound}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	var sc *ErrorWithStatusCode
	if errors.As(err, &sc) {
		return sc.StatusCode == http.StatusNotFound
	}
	return false
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}
