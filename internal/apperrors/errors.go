// Package apperrors provides sentinel and custom error types for the recommender.
package apperrors

// ErrNoSignal is the sentinel for signal-absence conditions: no interests, no
// search history, empty catalog, user unknown to the interaction matrix, too
// few users, or no usable neighbors. These are expected states on the scoring
// path, never surfaced as failures to a caller.
var ErrNoSignal = &NoSignalError{}

// NoSignalError reports that a scorer had nothing to score with.
type NoSignalError struct {
	Reason string
}

// NewNoSignalError creates a NoSignalError with a human-readable reason.
func NewNoSignalError(reason string) *NoSignalError {
	return &NoSignalError{Reason: reason}
}

// Error implements the error interface.
func (e *NoSignalError) Error() string {
	if e.Reason != "" {
		return "no recommendation signal: " + e.Reason
	}

	return "no recommendation signal"
}

// Is implements the error interface for error comparison.
func (e *NoSignalError) Is(target error) bool {
	_, ok := target.(*NoSignalError)

	return ok
}

// ErrBackendUnavailable is the sentinel for a degraded scoring backend, most
// commonly an embedding model that is not configured or failed to initialize.
// Scorers recover from it by returning an empty result.
var ErrBackendUnavailable = &BackendUnavailableError{}

// BackendUnavailableError reports that an external scoring backend cannot serve.
type BackendUnavailableError struct {
	Backend string
	Message string
}

// NewBackendUnavailableError creates a BackendUnavailableError for the named backend.
func NewBackendUnavailableError(backend, message string) *BackendUnavailableError {
	return &BackendUnavailableError{Backend: backend, Message: message}
}

// Error implements the error interface.
func (e *BackendUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Backend != "" {
		return e.Backend + " backend unavailable"
	}

	return "backend unavailable"
}

// Is implements the error interface for error comparison.
func (e *BackendUnavailableError) Is(target error) bool {
	_, ok := target.(*BackendUnavailableError)

	return ok
}

// ErrValidation represents a validation error on client input.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
