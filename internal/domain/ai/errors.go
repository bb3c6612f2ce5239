package ai

import (
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"
)

var (
	// ErrServiceUnavailable means no credential is configured for the provider.
	ErrServiceUnavailable = eris.New("ai service not configured")
	// ErrRemoteCallFailed wraps transport and API failures from the provider.
	ErrRemoteCallFailed = eris.New("ai remote call failed")
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = eris.New("ai quota exceeded")
)

// CallError is a failed provider call. It matches ErrRemoteCallFailed, and
// ErrQuotaExceeded when the provider answered 429.
type CallError struct {
	Provider string
	Status   int
	Err      error
}

func (e *CallError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) Is(target error) bool {
	switch target {
	case ErrRemoteCallFailed:
		return true
	case ErrQuotaExceeded:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}
