package service

import "errors"

// Service errors map directly to HTTP statuses in the server package.
var (
	// ErrNotFound means the bill or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller does not own the resource.
	ErrForbidden = errors.New("you do not have access to this bill")

	// ErrInvalid means the request payload failed validation.
	ErrInvalid = errors.New("invalid request")
)
