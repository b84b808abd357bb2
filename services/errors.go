package services

import (
	"errors"

	"wink/utils"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields utils.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

func newValidationError(fields utils.FieldErrors) error {
	return &ValidationError{Fields: fields}
}

func fieldError(field, message string) error {
	return newValidationError(utils.FieldErrors{field: {message}})
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
