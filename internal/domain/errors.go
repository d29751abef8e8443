package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrTransport  ErrorCode = "TRANSPORT_ERROR"

	// Pipeline specific errors
	ErrDuplicateSource ErrorCode = "DUPLICATE_SOURCE"
	ErrExtraction      ErrorCode = "EXTRACTION_ERROR"
	ErrGeneration      ErrorCode = "GENERATION_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string) *DomainError {
	return NewError(ErrValidation, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewTransportError(message string, err error) *DomainError {
	return NewError(ErrTransport, message, err)
}

// NewDuplicateSourceError reports that an equivalent source is already
// registered. The existing topic id is attached so clients can offer
// regeneration instead of a duplicate.
func NewDuplicateSourceError(message string, existingTopicID string) *DomainError {
	return &DomainError{
		Code:    ErrDuplicateSource,
		Message: message,
		Details: map[string]interface{}{"topic_id": existingTopicID},
	}
}

func NewExtractionError(message string, err error) *DomainError {
	return NewError(ErrExtraction, message, err)
}

func NewGenerationError(message string, err error) *DomainError {
	return NewError(ErrGeneration, message, err)
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
