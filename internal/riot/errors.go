package riot

import (
	"errors"
	"fmt"
)

// Error kinds returned by the client. Use errors.Is to test for them.
var (
	ErrNotFound    = errors.New("not found")
	ErrAuth        = errors.New("credential rejected")
	ErrRateLimited = errors.New("rate limited")
	ErrTransient   = errors.New("transient failure")
)

// APIError describes a failed API call.
type APIError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("riot: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("riot: %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// classifyStatus maps a non-200 HTTP status to one of the error kinds.
func classifyStatus(code int) error {
	switch code {
	case 401, 403:
		return ErrAuth
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		return ErrTransient
	}
}

// wrapTransient tags err as ErrTransient while keeping its message.
func wrapTransient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
