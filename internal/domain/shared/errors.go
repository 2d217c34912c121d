// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "progress", "question"
	Op      string // Operation that failed, e.g., "GetQuestions", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Question domain errors
var (
	ErrUnknownSubject = NewDomainError("question", "GetQuestions", ErrInvalidInput, "unknown subject")
	ErrEmptyQuestion  = NewDomainError("question", "CheckAnswer", ErrEmptyValue, "question has no answer")
)

// Session domain errors
var (
	ErrEmptyUserID      = NewDomainError("session", "Validate", ErrInvalidID, "user id is empty")
	ErrQuizNotActive    = NewDomainError("session", "Answer", ErrInvalidState, "no active question session")
	ErrQuizCursorBroken = NewDomainError("session", "Answer", ErrStateTransition, "question cursor out of range")
)

// Storage errors
var (
	ErrDocumentNotFound = NewDomainError("document", "Load", ErrNotFound, "document not found")
	ErrStoreUnavailable = NewDomainError("document", "Request", ErrServiceUnavailable, "document store is unavailable")
	ErrUnknownConcern   = NewDomainError("document", "Validate", ErrInvalidInput, "unknown document concern")
)

// Gamification errors
var (
	ErrTeamNotFound       = NewDomainError("team", "Find", ErrNotFound, "team not found")
	ErrTeamFull           = NewDomainError("team", "Join", ErrInvalidState, "team is full")
	ErrAlreadyInTeam      = NewDomainError("team", "Join", ErrAlreadyExists, "user already belongs to a team")
	ErrUnknownPetType     = NewDomainError("pet", "Select", ErrInvalidInput, "unknown pet type")
	ErrUnknownChallenge   = NewDomainError("challenge", "Start", ErrNotFound, "unknown challenge")
	ErrChallengeDoneToday = NewDomainError("challenge", "Start", ErrAlreadyExists, "challenge already started today")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
