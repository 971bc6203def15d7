// Package apperr defines the error taxonomy shared by the server and the
// client: a stable code, a user-facing message and the wrapped cause.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	InvalidCredentials   Code = "invalid-credentials"
	EmailAlreadyInUse    Code = "email-already-in-use"
	WeakPassword         Code = "weak-password"
	InvalidEmail         Code = "invalid-email"
	UserDisabled         Code = "user-disabled"
	TooManyRequests      Code = "too-many-requests"
	NetworkRequestFailed Code = "network-request-failed"
	PermissionDenied     Code = "permission-denied"
	NotFound             Code = "not-found"
	Unavailable          Code = "unavailable"
	Timeout              Code = "timeout"
	Validation           Code = "validation-error"
	UserDataNotFound     Code = "user-data-not-found"
	Unauthenticated      Code = "unauthenticated"
	Internal             Code = "internal"
)

var messages = map[Code]string{
	InvalidCredentials:   "Invalid email or password.",
	EmailAlreadyInUse:    "An account with this email already exists. Please login instead.",
	WeakPassword:         "Password should be at least 6 characters long.",
	InvalidEmail:         "Please enter a valid email address.",
	UserDisabled:         "This account has been disabled.",
	TooManyRequests:      "Too many attempts. Please try again later.",
	NetworkRequestFailed: "Network error. Please check your internet connection.",
	PermissionDenied:     "Permission denied. You may not have the right to perform this action.",
	NotFound:             "The requested record was not found. It may have been already deleted.",
	Unavailable:          "Service temporarily unavailable. Please try again later.",
	Timeout:              "The operation timed out. It may still complete in the background.",
	Validation:           "The submitted data is invalid.",
	UserDataNotFound:     "User data not found in database.",
	Unauthenticated:      "Please sign in to continue.",
	Internal:             "An unexpected error occurred.",
}

var statuses = map[Code]int{
	InvalidCredentials:   http.StatusUnauthorized,
	EmailAlreadyInUse:    http.StatusConflict,
	WeakPassword:         http.StatusBadRequest,
	InvalidEmail:         http.StatusBadRequest,
	UserDisabled:         http.StatusForbidden,
	TooManyRequests:      http.StatusTooManyRequests,
	NetworkRequestFailed: http.StatusBadGateway,
	PermissionDenied:     http.StatusForbidden,
	NotFound:             http.StatusNotFound,
	Unavailable:          http.StatusServiceUnavailable,
	Timeout:              http.StatusGatewayTimeout,
	Validation:           http.StatusBadRequest,
	UserDataNotFound:     http.StatusUnauthorized,
	Unauthenticated:      http.StatusUnauthorized,
	Internal:             http.StatusInternalServerError,
}

// Message returns the user-facing text for code.
func Message(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[Internal]
}

// HTTPStatus returns the response status used for code.
func HTTPStatus(code Code) int {
	if s, ok := statuses[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// New returns an error with the given code and message. An empty message
// falls back to the default text for code.
func New(code Code, msg string) *Error {
	if msg == "" {
		msg = Message(code)
	}
	return &Error{Code: code, Message: msg}
}

// Wrap classifies err under code with the default message.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Message: Message(code), Err: err}
}

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

// CodeOf returns the code carried by err. Context deadlines map to Timeout
// and unclassified errors to Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Internal
}

// From converts any error into an *Error, keeping an existing classification.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeOf(err), err)
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound         = New(NotFound, "")
	ErrPermissionDenied = New(PermissionDenied, "")
	ErrUnauthenticated  = New(Unauthenticated, "")
	ErrTimeout          = New(Timeout, "")
)
