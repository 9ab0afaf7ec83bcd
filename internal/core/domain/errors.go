package domain

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")

	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrStoreUnavailable wraps connection and driver failures so callers
	// can retry instead of rejecting the request.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	ErrNotAuthenticated = errors.New("please log in to access this page")
	ErrForbidden        = errors.New("you don't have permission to access this page")

	ErrInvalidDocument = errors.New("invalid document input")
)
