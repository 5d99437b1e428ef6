package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network call when the
	// provider API key is absent.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrProviderUnavailable wraps transport failures that persisted
	// through the retry budget. Callers may tell the user to try again.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError is a non-2xx reply from the provider. It is a
// request-level problem (bad key, malformed prompt) and is never retried.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
}

// MissingFieldError reports an empty required request field by its
// wire-level name, e.g. "job_description".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field: " + e.Field
}
