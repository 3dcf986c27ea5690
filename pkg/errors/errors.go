package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies an error kind on the wire. The string value is what
// clients see in the "error" field of failure responses.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "ValidationError"
	CodeUnauthorized       ErrorCode = "Unauthorized"
	CodeTokenExpired       ErrorCode = "TokenExpired"
	CodeInvalidToken       ErrorCode = "InvalidToken"
	CodeForbidden          ErrorCode = "Forbidden"
	CodeNotFound           ErrorCode = "NotFound"
	CodeServerError        ErrorCode = "ServerError"
	CodeEmailTaken         ErrorCode = "EmailTaken"
	CodeUsernameTaken      ErrorCode = "UsernameTaken"
	CodeInvalidCredentials ErrorCode = "InvalidCredentials"
	CodeOAuthOnlyAccount   ErrorCode = "OAuthOnlyAccount"
	CodeAlreadyHasPassword ErrorCode = "AlreadyHasPassword"
)

// AppError is a structured application error carrying the HTTP status and
// wire-level error code alongside the message shown to the client.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Errors     []string // optional list form, used by input validators
	Internal   error    // never serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewValidationErrors creates a validation error from a list of messages,
// rendered as {"success":false,"errors":[...]} on the wire.
func NewValidationErrors(messages []string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Errors:     messages,
	}
}

// NewUnauthorizedError creates a new authentication error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewTokenExpiredError reports an expired bearer token
func NewTokenExpiredError() *AppError {
	return &AppError{
		Code:       CodeTokenExpired,
		Message:    "Your session has expired. Please login again.",
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInvalidTokenError reports a malformed or badly signed bearer token
func NewInvalidTokenError() *AppError {
	return &AppError{
		Code:       CodeInvalidToken,
		Message:    "Invalid authentication token",
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a new ownership violation error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Code:       CodeServerError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewConflictError creates a 400 error with a domain-specific code such as
// EmailTaken or UsernameTaken.
func NewConflictError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidCredentialsError reports a failed login without revealing
// whether the account exists.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid credentials",
		StatusCode: http.StatusUnauthorized,
		Errors:     []string{"Invalid credentials"},
	}
}

// NewOAuthOnlyAccountError reports a login attempt against an account that
// has no password set.
func NewOAuthOnlyAccountError() *AppError {
	return &AppError{
		Code:       CodeOAuthOnlyAccount,
		Message:    "This account uses Google sign-in. Please sign in with Google, or sign up with the same email to set a password.",
		StatusCode: http.StatusUnauthorized,
	}
}

// AsAppError converts any error to an *AppError, wrapping unknown errors as
// internal server errors so nothing leaks to the client.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError("Something went wrong", err)
}
