package pplx

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned before any network call when no
	// credential was configured.
	ErrMissingAPIKey = errors.New("api key is not set")

	// ErrRateLimited matches a *StatusError carrying HTTP 429.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %v", e.StatusCode, http.StatusText(e.StatusCode), e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRateLimited) true for 429 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
