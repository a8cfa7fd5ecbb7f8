package backend

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is matched by every APIError via errors.Is.
var ErrUnexpectedResponse = errors.New("unexpected backend response")

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	// Method and Path identify the request.
	Method string
	Path   string
	// StatusCode is the HTTP status returned.
	StatusCode int
	// Body is the (truncated) response body.
	Body string
}

// Error returns a human-readable description of the failed call.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("backend %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// Is reports whether target is ErrUnexpectedResponse.
func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}

// isAPIError determines if err came from a response rather than the transport.
func isAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
