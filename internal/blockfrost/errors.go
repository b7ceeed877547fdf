package blockfrost

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the API answers 404 for a resource.
var ErrNotFound = errors.New("blockfrost: not found")

// APIError is a non-2xx response from the Blockfrost API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Kind       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blockfrost: status %d", e.StatusCode)
	}
	return fmt.Sprintf("blockfrost: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Only rate limited requests are re-issued; they returned no data.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
