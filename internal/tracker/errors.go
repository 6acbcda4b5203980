package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the space URL or API key is missing.
	ErrNotConfigured = errors.New("backlog is not configured")

	// ErrRequestFailed means the request never produced a usable response.
	ErrRequestFailed = errors.New("backlog request failed")

	// ErrRateLimited means the API answered 429.
	ErrRateLimited = errors.New("backlog rate limit exceeded")

	// ErrInvalidParams means a create request failed local validation.
	ErrInvalidParams = errors.New("invalid issue parameters")
)

// APIError is a non-success response from the API.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backlog api error (status %d): %s", e.StatusCode, e.Message)
}
