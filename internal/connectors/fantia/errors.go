package fantia

import (
	"errors"
	"fmt"
)

// ErrInvalidCursor indicates the persisted cursor state could not be
// decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// APIError represents a non-success HTTP response from the remote API.
// It is not recovered locally; partial progress already committed is
// retained and the run aborts.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// URL is the request URL.
	URL string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("fantia api: status %d for %s", e.StatusCode, e.URL)
}
