package apperr

import (
	"errors"
	"fmt"
	"time"
)

// AppError is the error value every layer of the request pipeline speaks.
// It carries a machine-readable code, a human message, the HTTP status the
// transport layer should answer with, and for rate-limit rejections the
// duration after which the client may retry.
type AppError struct {
	Code       int
	Message    string
	HTTPStatus int
	RetryAfter time.Duration
	Cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap implements the errors.Wrapper interface.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError.
func New(code int, msg string, httpStatus int, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: httpStatus,
		Cause:      cause,
	}
}

// Wrap attaches code/message/status to an existing error. Returns nil for a
// nil error so call sites can wrap unconditionally.
func Wrap(err error, code int, msg string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: httpStatus,
		Cause:      err,
	}
}

// RateLimited creates the rejection for an exhausted rate window.
func RateLimited(msg string, httpStatus int, retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    msg,
		HTTPStatus: httpStatus,
		RetryAfter: retryAfter,
	}
}

// From extracts the AppError from an error chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the AppError code in the chain, or 0 when there is none.
func CodeOf(err error) int {
	if appErr, ok := From(err); ok {
		return appErr.Code
	}
	return 0
}

// Is reports whether the error chain carries an AppError with the given code.
func Is(err error, code int) bool {
	return CodeOf(err) == code
}
