package resilience

import (
	"errors"
	"net/http"
)

// RateLimitError marks an HTTP 429 from the primary API. It is the only
// error class the retry policy acts on.
type RateLimitError struct {
	Err        error
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps an error as retryable with its HTTP status code.
func NewRateLimitError(err error, statusCode int) *RateLimitError {
	return &RateLimitError{Err: err, StatusCode: statusCode}
}

// IsRateLimited reports whether the error chain contains a 429.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.StatusCode == http.StatusTooManyRequests || rle.StatusCode == 0
	}
	return false
}
