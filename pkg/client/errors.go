package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the HARI API. It keeps the raw body so
// callers with endpoint-specific knowledge (like the uploader's attribute
// conflict recovery) can decode it into a typed shape.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// HTTPStatusCode satisfies the error classifier's status-coder contract.
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsConflict reports whether err is a conflict-class API error.
func IsConflict(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
