package gemini

import "errors"

var (
	// ErrMissingAPIKey indicates the analyzer was configured without a key.
	ErrMissingAPIKey = errors.New("gemini API key is required")

	// ErrProfileNotFound indicates the GitHub user does not exist.
	ErrProfileNotFound = errors.New("github profile not found")

	// ErrContentBlocked indicates the model refused the prompt on safety
	// grounds. Not retryable.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned no content")
)
