package algorithm

import (
	"errors"
	"fmt"
)

// TimestampFormat is the timestamp pattern reported back to callers when a literal does not parse.
const TimestampFormat = "%Y-%m-%dT%H:%M:%SZ"

// EmptyInputError is returned when the request body is empty.
type EmptyInputError struct {
	Algorithm string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("No standard input provided to %s algorithm, exiting", e.Algorithm)
}

// ParseError represents malformed JSON or a field of the wrong shape.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Invalid JSON provided: %s, exiting", e.Message)
}

// Unwrap returns underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError names a required field absent from the request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Invalid JSON provided: missing '%s', exiting", e.Field)
}

// InsufficientDataError reports the first observation-count bound the request violates.
type InsufficientDataError struct {
	Minimum string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("Invalid data provided, must be at least %s, exiting", e.Minimum)
}

// DatetimeFormatError carries the timestamp literal that could not be parsed.
type DatetimeFormatError struct {
	Value string
}

func (e *DatetimeFormatError) Error() string {
	return fmt.Sprintf("Invalid datetime format: time data '%s' does not match format '%s'", e.Value, TimestampFormat)
}

// ComputationError wraps a failure of the numeric fit or prediction.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("Failed to compute prediction: %v, exiting", e.Err)
}

// Unwrap returns underlying error.
func (e *ComputationError) Unwrap() error {
	return e.Err
}

// Computationf creates a ComputationError with formatting.
func Computationf(format string, a ...interface{}) *ComputationError {
	return &ComputationError{Err: fmt.Errorf(format, a...)}
}

// IsValidation reports whether err belongs to the request validation family.
func IsValidation(err error) bool {
	var (
		empty    *EmptyInputError
		parse    *ParseError
		missing  *MissingFieldError
		short    *InsufficientDataError
		datetime *DatetimeFormatError
	)
	return errors.As(err, &empty) ||
		errors.As(err, &parse) ||
		errors.As(err, &missing) ||
		errors.As(err, &short) ||
		errors.As(err, &datetime)
}

// IsComputation reports whether err is a numeric fitting failure.
func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
