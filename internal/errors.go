package internal

import (
	"errors"
	"fmt"
)

// Generic errors
var (
	// ErrUnauthorized is returned when a receiving a 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResourceNotFound is returned when a receiving a 404.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when a client-supplied value fails a
	// constraint.
	ErrInvalidInput = errors.New("invalid input")
)

type (
	HTTPError struct {
		Code    int
		Message string
	}

	// MissingParameterError occurs when the caller has failed to provide a
	// required parameter
	MissingParameterError struct {
		Parameter string
	}
)

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Parameter)
}

// InvalidParameterError is a client error describing the offending value. It
// matches ErrInvalidInput.
type InvalidParameterError string

func (e InvalidParameterError) Error() string {
	return string(e)
}

func (e InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidInput
}
