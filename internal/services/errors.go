package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP statuses; anything else is an internal error.
var (
	// ErrNotFound means no user record exists for the given id.
	ErrNotFound = errors.New("user not found")

	// ErrEmailExists means another user already holds the normalized email.
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
