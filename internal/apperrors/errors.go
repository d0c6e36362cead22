// Package apperrors defines the client-facing error taxonomy of the service.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// APIError is an error whose Message is safe to show to clients.
type APIError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status code.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

func NewErrValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{Kind: KindConflict, Message: "User Already Exists", Err: fmt.Errorf("email %q is taken", email)}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "Invalid credentials"}
}

func NewErrAccountDeactivated() *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "User is Blocked by admin"}
}

func NewErrUnauthorized() *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func NewErrUserNotFound() *APIError {
	return &APIError{Kind: KindNotFound, Message: "User not found"}
}

func NewErrSamePassword() *APIError {
	return &APIError{Kind: KindValidation, Message: "New password cannot be same as old password"}
}

func NewErrInternalServerError(err error) *APIError {
	return &APIError{Kind: KindInternal, Message: "Internal Server Error", Err: err}
}
