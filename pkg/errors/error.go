// Package errors carries the coded errors returned across findash.
//
// Every failure that reaches a caller is an *Error with an ErrorCode, or an
// *InsufficientDataError when a series is too short for an indicator. Codes are
// grouped by hundreds; see Category for the groups. The HTTP layer maps
// categories to status codes and the CLI prints Error() as is.
//
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no prices found for ticker %s", ticker)
//	err = errors.Wrap(errors.ErrCodeQueryFailed, "failed to read price file", err)
//	if errors.HasCode(err, errors.ErrCodeQueryFailed) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New returns an *Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "[code] message" followed by the cause when there is one.
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code, so a coded value can be used
// as a target of errors.Is regardless of its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first coded error in err's chain.
// An *InsufficientDataError reports ErrCodeInsufficientData, anything else
// ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}

	return ErrCodeUnknown
}

// HasCode reports whether GetCode(err) is code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// CategoryOf returns the category of the code found in err's chain.
func CategoryOf(err error) Category {
	return GetCode(err).Category()
}

// InsufficientDataError is returned when a price series is too short for an
// indicator to produce a single defined value.
type InsufficientDataError struct {
	Indicator string // e.g. "rsi"
	Required  int
	Actual    int
	Message   string
}

func NewInsufficientDataError(indicator string, required, actual int) *InsufficientDataError {
	return &InsufficientDataError{
		Indicator: indicator,
		Required:  required,
		Actual:    actual,
		Message:   fmt.Sprintf("insufficient data for %s: required %d data points, got %d", indicator, required, actual),
	}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("[%d] %s", ErrCodeInsufficientData, e.Message)
}

// IsInsufficientDataError reports whether err's chain holds an *InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficient *InsufficientDataError

	return errors.As(err, &insufficient)
}
