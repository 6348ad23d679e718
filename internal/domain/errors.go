package domain

import (
	"errors"
	"fmt"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// Predefined domain errors
var (
	// ErrValidation the request was rejected before any network call
	ErrValidation = errors.New("validation failed")
	// ErrTransport the backend could not be reached or answered badly
	ErrTransport = errors.New("transport failure")
	// ErrUnclassified the response content type is not recognized
	ErrUnclassified = errors.New("unclassified response")
	// ErrSessionNotFound the target session no longer exists
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy the session already has a request in flight
	ErrSessionBusy = errors.New("session busy")
	// ErrNotFound a resource (e.g. a blob handle) does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput malformed input outside of the conversation path
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal internal error
	ErrInternal = errors.New("internal error")
)

// User-facing messages for conversation errors
const (
	MessageValidation   = "Please enter a valid message."
	MessageTransport    = "Something went wrong, please try again."
	MessageUnclassified = "unknown response type."
	MessageUnavailable  = "The report could not be displayed, please try again."
)

// DomainError is a classified error with a user-safe message
type DomainError struct {
	Code    entity.ErrorCode
	Message string
	Err     error
}

// Error implements error (used for logs and internal propagation)
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message that is safe to show (no internal details)
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return &DomainError{
		Code:    entity.CodeValidation,
		Message: message,
		Err:     ErrValidation,
	}
}

// NewTransportError wraps a network/HTTP failure; the cause is kept for logs only
func NewTransportError(err error) error {
	return &DomainError{
		Code:    entity.CodeTransport,
		Message: MessageTransport,
		Err:     fmt.Errorf("%w: %v", ErrTransport, err),
	}
}

// NewUnclassifiedError creates an error for an unrecognized content type
func NewUnclassifiedError(contentType string) error {
	return &DomainError{
		Code:    entity.CodeUnclassified,
		Message: MessageUnclassified,
		Err:     fmt.Errorf("%w: content-type %q", ErrUnclassified, contentType),
	}
}

// NewSessionNotFoundError creates a session-not-found error
func NewSessionNotFoundError(id entity.SessionID) error {
	return &DomainError{
		Code:    entity.CodeSessionNotFound,
		Message: fmt.Sprintf("session '%s' not found", id),
		Err:     ErrSessionNotFound,
	}
}

// NewSessionBusyError creates an error for a second send on an awaiting session
func NewSessionBusyError(id entity.SessionID) error {
	return &DomainError{
		Code:    entity.CodeSessionBusy,
		Message: "a report is already being generated in this session",
		Err:     fmt.Errorf("%w: %s", ErrSessionBusy, id),
	}
}

// NewNotFoundError creates a resource-not-found error
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    entity.CodeNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    entity.CodeInvalidInput,
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewInternalError creates an internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    entity.CodeInternal,
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// ToErrorResult converts err into the ErrorResult shown in the conversation.
// Errors that are not DomainErrors are reported as transport failures.
func ToErrorResult(err error) entity.ErrorResult {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return entity.ErrorResult{Code: domainErr.Code, Message: domainErr.UserMessage()}
	}
	return entity.ErrorResult{Code: entity.CodeTransport, Message: MessageTransport}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsUnclassified reports whether err is an unclassified-response error
func IsUnclassified(err error) bool {
	return errors.Is(err, ErrUnclassified)
}

// IsSessionNotFound reports whether err is a session-not-found error
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsSessionBusy reports whether err is a session-busy error
func IsSessionBusy(err error) bool {
	return errors.Is(err, ErrSessionBusy)
}

// IsNotFound reports whether err is a resource-not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInternalError reports whether err is an internal error
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}
