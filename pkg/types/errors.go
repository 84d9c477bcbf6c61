package types

import "errors"

// Common error sentinels for the store and provider boundaries.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrRateLimit indicates the embedding provider rate limit was exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// StorageError indicates the store was unreachable or timed out. It aborts
// the current request and is surfaced to the caller.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return "storage: " + e.Op + ": " + e.Err.Error()
	}
	return "storage: " + e.Op + ": " + e.Message
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is implements errors.Is support for StorageError.
// This allows errors.Is(err, &StorageError{}) to work with wrapped errors.
func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}

// NewStorageError creates a storage error for the given operation.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ConstraintError indicates a uniqueness violation: the entity or edge already
// exists. During graph build it is recovered locally and treated as a
// success-no-op; all other error kinds propagate.
type ConstraintError struct {
	Op      string
	Message string
	Err     error
}

func (e *ConstraintError) Error() string {
	if e.Message != "" {
		return "constraint: " + e.Op + ": " + e.Message
	}
	if e.Err != nil {
		return "constraint: " + e.Op + ": " + e.Err.Error()
	}
	return "constraint: " + e.Op
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Is implements errors.Is support for ConstraintError.
func (e *ConstraintError) Is(target error) bool {
	_, ok := target.(*ConstraintError)
	return ok
}

// NewConstraintError creates a constraint error for the given operation.
func NewConstraintError(op string, err error) *ConstraintError {
	return &ConstraintError{Op: op, Err: err}
}

// ProviderError indicates the embedding call failed. It aborts the current
// search request; there is no fallback to an empty or cached embedding.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := "provider " + e.Provider + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is implements errors.Is support for ProviderError.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}

// NewProviderError creates a provider error.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

// RateLimitError indicates the embedding provider rejected the call because
// of throttling. Retry wrappers back off on it; past the retry budget it
// surfaces to the caller.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded, try again later"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a rate limit error with an optional message.
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// ValidationError indicates a malformed input document during ingestion. The
// single item is rejected and the batch continues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := "validation"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is implements errors.Is support for ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
