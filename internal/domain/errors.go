package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeStorage            ErrorType = "storage"
	ErrorTypeFileTooLarge       ErrorType = "file_too_large"
	ErrorTypeFileNotFound       ErrorType = "file_not_found"
	ErrorTypeExtraction         ErrorType = "extraction"
	ErrorTypeEmptyContent       ErrorType = "empty_content"
	ErrorTypeNoContent          ErrorType = "no_content"
	ErrorTypeServiceUnavailable ErrorType = "service_unavailable"
	ErrorTypeModelNotReady      ErrorType = "model_not_ready"
	ErrorTypeUpstream           ErrorType = "upstream"
	ErrorTypeConnection         ErrorType = "connection"
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeConfig             ErrorType = "config"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the domain error type carried by err, if any.
func TypeOf(err error) (ErrorType, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type, true
	}
	return "", false
}

// IsType reports whether err carries the given domain error type.
func IsType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// Common error constructors
func StorageError(message string, err error) *DomainError {
	return NewError(ErrorTypeStorage, message, err)
}

func FileTooLargeError(message string, err error) *DomainError {
	return NewError(ErrorTypeFileTooLarge, message, err)
}

func FileNotFoundError(message string, err error) *DomainError {
	return NewError(ErrorTypeFileNotFound, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func EmptyContentError(message string, err error) *DomainError {
	return NewError(ErrorTypeEmptyContent, message, err)
}

func NoContentError(message string, err error) *DomainError {
	return NewError(ErrorTypeNoContent, message, err)
}

func ServiceUnavailableError(message string, err error) *DomainError {
	return NewError(ErrorTypeServiceUnavailable, message, err)
}

func ModelNotReadyError(message string, err error) *DomainError {
	return NewError(ErrorTypeModelNotReady, message, err)
}

func UpstreamError(message string, err error) *DomainError {
	return NewError(ErrorTypeUpstream, message, err)
}

func ConnectionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConnection, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}
