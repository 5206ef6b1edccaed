package apiclient

import "fmt"

// APIError represents an error response from the management API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// IsAuthError reports whether the server rejected the request for
// missing or invalid credentials.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsNotFound reports whether the requested resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}
