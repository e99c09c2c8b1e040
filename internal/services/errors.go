package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrGeneratorDisabled  = errors.New("answer generator is not configured")
)

// UpstreamError wraps a failure of an external provider
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// validationError joins the sentinel with the field errors so callers can match either
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}
