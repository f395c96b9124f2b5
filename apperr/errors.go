// Package apperr defines the error taxonomy shared by the loyalty services.
package apperr

import (
	"errors"
	"fmt"
)

// Code represents a standardized internal error code.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidPolicy   Code = "INVALID_POLICY"
	CodeAlreadyRedeemed Code = "ALREADY_REDEEMED"
	CodeUnexpected      Code = "UNEXPECTED"
)

// Error is a structured application error. Two errors match under errors.Is
// when their codes are equal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrInvalidPolicy   = &Error{Code: CodeInvalidPolicy, Message: "invalid policy"}
	ErrAlreadyRedeemed = &Error{Code: CodeAlreadyRedeemed, Message: "already redeemed"}
	ErrUnexpected      = &Error{Code: CodeUnexpected, Message: "unexpected"}
)

// NotFound reports a missing entity, e.g. NotFound("customer", 42).
func NotFound(entity string, id any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func InvalidPolicy(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPolicy, Message: fmt.Sprintf(format, args...)}
}

func AlreadyRedeemed(rewardID uint64) *Error {
	return &Error{Code: CodeAlreadyRedeemed, Message: fmt.Sprintf("reward %d already redeemed", rewardID)}
}

// Unexpected wraps a storage or collaborator failure.
func Unexpected(message string, err error) *Error {
	return &Error{Code: CodeUnexpected, Message: message, Err: err}
}

// CodeOf extracts the code of err, defaulting to CodeUnexpected.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnexpected
}
