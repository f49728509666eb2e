package helpdesk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the ticket or contact does not exist.
	ErrNotFound = errors.New("helpdesk: not found")
	// ErrUnauthorized is returned when Freshdesk rejects the API key.
	ErrUnauthorized = errors.New("helpdesk: unauthorized")
)

// APIError is a non-2xx Freshdesk response.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func newAPIError(status int, path, body string) *APIError {
	return &APIError{StatusCode: status, Path: path, Body: body}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("freshdesk API error %d on %s: %s", e.StatusCode, e.Path, e.Body)
}

// Is maps 404 to ErrNotFound and 401/403 to ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}
