package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token is presented.
	ErrMissingToken = errors.New("auth: empty token")
	// ErrInvalidToken is returned for tokens that fail validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInvalidRole is returned when the role claim is unknown.
	ErrInvalidRole = errors.New("auth: invalid role")
)
