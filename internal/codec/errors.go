package codec

import (
	"errors"
	"fmt"
)

// MissingParameterError reports a required argument that is absent or null.
type MissingParameterError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Is matches any MissingParameterError.
func (e *MissingParameterError) Is(target error) bool {
	_, ok := target.(*MissingParameterError)
	return ok
}

// InvalidArgumentError reports an argument present with the wrong kind.
type InvalidArgumentError struct {
	Field    string
	Expected string
	Got      any
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s must be a %s, got %T", e.Field, e.Expected, e.Got)
}

// Is matches any InvalidArgumentError.
func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)
	return ok
}

// Sentinels for errors.Is checks.
var (
	ErrMissingParameter = &MissingParameterError{}
	ErrInvalidArgument  = &InvalidArgumentError{}
)

func missing(field string) error {
	return &MissingParameterError{Field: field}
}

func invalid(field, expected string, got any) error {
	return &InvalidArgumentError{Field: field, Expected: expected, Got: got}
}

// IsDecodeError reports whether err came from argument decoding.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMissingParameter) || errors.Is(err, ErrInvalidArgument)
}
