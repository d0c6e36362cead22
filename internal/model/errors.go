package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by stores when the email unique constraint is violated.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrTokenInvalid covers malformed, tampered and expired session tokens.
	ErrTokenInvalid = errors.New("invalid session token")
)
