package domain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of an error crossing a component boundary.
type ErrorCode string

const (
	CodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeTransport     ErrorCode = "TRANSPORT_ERROR"
	CodeExtraction    ErrorCode = "EXTRACTION_FAILED"
	CodePersistence   ErrorCode = "PERSISTENCE_ERROR"
)

var (
	// ErrUnreadableDocument is returned when the upload is not a parseable PDF.
	ErrUnreadableDocument = errors.New("unreadable document")
	// ErrEmptyDocument is returned when the document yields no pages.
	ErrEmptyDocument = errors.New("empty document")
	// ErrInvalidStatus is returned for status values outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConfigurationError reports a missing or unusable setting. It is fatal for
// the request, never for the process.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

func (e *ConfigurationError) Code() ErrorCode { return CodeConfiguration }
func (e *ConfigurationError) Retryable() bool { return false }

// ValidationError reports a user-correctable problem with request input.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error   { return e.Err }
func (e *ValidationError) Code() ErrorCode { return CodeValidation }
func (e *ValidationError) Retryable() bool { return false }

// NotFoundError reports an id reference that does not resolve.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Code() ErrorCode { return CodeNotFound }
func (e *NotFoundError) Retryable() bool { return false }

// TransportError reports a failed call to the LLM endpoint.
type TransportError struct {
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return "LLM request timed out"
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("LLM request failed with status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("LLM request failed with status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("LLM request failed: %v", e.Err)
	}
	return "LLM request failed"
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Code() ErrorCode { return CodeTransport }
func (e *TransportError) Retryable() bool { return true }

// ExtractionFailure reports an LLM reply that could not be coerced into a
// scorecard. RawText keeps the reply verbatim for diagnostics.
type ExtractionFailure struct {
	Reason  string
	RawText string
	Details []string
}

func (e *ExtractionFailure) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("scorecard extraction failed: %s (%s)", e.Reason, e.Details[0])
	}
	return "scorecard extraction failed: " + e.Reason
}

func (e *ExtractionFailure) Code() ErrorCode { return CodeExtraction }
func (e *ExtractionFailure) Retryable() bool { return true }

// PersistenceError wraps a store-layer failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error   { return e.Err }
func (e *PersistenceError) Code() ErrorCode { return CodePersistence }
func (e *PersistenceError) Retryable() bool { return true }

// CodedError is implemented by every error type above.
type CodedError interface {
	error
	Code() ErrorCode
	Retryable() bool
}
