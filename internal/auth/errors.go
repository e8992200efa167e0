// Package auth implements registration, login, email confirmation and
// bearer-token request authentication.
package auth

import "errors"

var (
	// ErrInvalidCredentials covers bad email/password combinations. The same
	// error is used for unknown emails and wrong passwords so login does not
	// reveal account existence.
	ErrInvalidCredentials = errors.New("could not validate credentials")

	// ErrUnconfirmedUser is returned when a user logs in before confirming
	// their email address.
	ErrUnconfirmedUser = errors.New("user has not confirmed email")

	// ErrDuplicateUser is returned when registering an email that is taken.
	ErrDuplicateUser = errors.New("a user with that email already exists")

	// ErrExpiredToken is returned for structurally valid, correctly signed
	// tokens past their expiry.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidToken covers malformed tokens, bad signatures and wrong
	// token types.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound is returned when a valid token references a subject
	// that no longer exists.
	ErrUserNotFound = errors.New("could not find user for this token")
)
