package service

import (
	"errors"

	"ruangpulih/internal/models"
)

// ValidationError is a problem with caller input found before any
// request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Session exposes the logged-in user, if any.
type Session interface {
	CurrentUser() *models.User
}
