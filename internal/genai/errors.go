package genai

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no API key is set.
	ErrNotConfigured = errors.New("gemini api key is not configured")

	// ErrRequestFailed means the request never produced a usable response.
	ErrRequestFailed = errors.New("gemini request failed")

	// ErrRateLimited means the API answered 429.
	ErrRateLimited = errors.New("gemini rate limit exceeded")

	// ErrEmptyResponse means the reply had no text, usually because a
	// safety filter blocked it.
	ErrEmptyResponse = errors.New("gemini returned an empty response")

	// ErrInvalidOutput means the reply could not be parsed into the
	// expected structure.
	ErrInvalidOutput = errors.New("invalid gemini output format")
)

// APIError is a non-success response from the API.
type APIError struct {
	Status     string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error (status %d): %s", e.StatusCode, e.Message)
}
