package common

import (
	"errors"
	"fmt"
)

// Error codes shared by the stores and the HTTP layer
const (
	ErrCodeValidation = "VALIDATION_FAILED"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeStorage    = "STORAGE_ERROR"
)

// CodedError is implemented by every domain error in the service
type CodedError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// ValidationError reports malformed or missing input
type ValidationError struct {
	Field      string
	ErrMessage string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.ErrMessage)
}

func (e ValidationError) Code() string {
	return ErrCodeValidation
}

func (e ValidationError) Message() string {
	return e.ErrMessage
}

func (e ValidationError) Temporary() bool {
	return false
}

// NotFoundError reports a reference to a nonexistent record
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

func (e NotFoundError) Code() string {
	return ErrCodeNotFound
}

func (e NotFoundError) Message() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Temporary() bool {
	return false
}

// ConflictError reports a uniqueness violation
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Resource, e.Field, e.Value)
}

func (e ConflictError) Code() string {
	return ErrCodeConflict
}

func (e ConflictError) Message() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

func (e ConflictError) Temporary() bool {
	return false
}

// StorageError wraps a failure talking to the backing store
type StorageError struct {
	Operation string
	Cause     error
}

func (e StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error during %s (caused by: %v)", e.Operation, e.Cause)
	}
	return fmt.Sprintf("storage error during %s", e.Operation)
}

func (e StorageError) Code() string {
	return ErrCodeStorage
}

func (e StorageError) Message() string {
	return "database operation failed"
}

func (e StorageError) Temporary() bool {
	return true
}

func (e StorageError) Unwrap() error {
	return e.Cause
}

// WrapStorageError wraps err as a StorageError, passing through errors that
// are already classified.
func WrapStorageError(err error, operation string) error {
	if err == nil {
		return nil
	}
	var coded CodedError
	if errors.As(err, &coded) {
		return err
	}
	return StorageError{Operation: operation, Cause: err}
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, ErrMessage: message}
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}
