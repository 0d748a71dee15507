// Package apperror defines the error kinds shared by every layer.
//
// Repositories, services and handlers all speak in these sentinels. The
// HTTP layer maps them to status codes in one place (handler.errorWriter),
// so nothing below it needs to know about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrUniqueViolation  = errors.New("unique constraint violation")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConfiguration    = errors.New("configuration error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing record. Repositories return (nil, nil) for a
// missing row; the service layer turns that into this error.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UniqueViolation reports that value collides with an existing row's unique
// column (e.g. a user's email).
func UniqueViolation(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrUniqueViolation,
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Field:   field,
	}
}

// InvalidReference reports a foreign key that points at no row.
func InvalidReference(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidReference,
		Message: message,
		Field:   field,
	}
}

// Configuration reports an unusable startup setting. It is fatal: callers
// log it and exit.
func Configuration(setting, message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s: %s", setting, message),
		Field:   setting,
	}
}
