package errors

import "errors"

var (
	ErrNotFound = errors.New("account not found")

	ErrDuplicateUsername = errors.New("username already exists")

	ErrInvalidAccount = errors.New("invalid account")
)
