// Package service implements the credential and session lifecycle:
// registration, login, refresh, logout, email verification and password
// reset. It orchestrates the credential hasher, the token codec and the
// ephemeral token store around the durable user record store.
package service

import "errors"

// Failure taxonomy for the session lifecycle. Handlers translate these
// into HTTP responses; anything not matching one of them is a store or
// infrastructure failure and surfaces as service-unavailable.
var (
	// ErrEmailExists signals a duplicate registration. Unlike login
	// failures this one is disclosed to the caller.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases must stay indistinguishable to prevent account
	// enumeration.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrAccountDisabled means credentials checked out but the account
	// is not allowed to log in.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrInvalidToken covers malformed, forged, expired or wrong-typed
	// refresh tokens presented to the refresh flow.
	ErrInvalidToken = errors.New("invalid refresh token")

	// ErrTokenRevoked means the refresh token verified cryptographically
	// but is no longer the stored token for its subject: it was
	// superseded by a newer login, deleted by logout, or timed out.
	ErrTokenRevoked = errors.New("refresh token revoked or expired")

	// ErrActionTokenInvalid covers absent, expired or already consumed
	// single-use verification/reset tokens.
	ErrActionTokenInvalid = errors.New("invalid or expired token")

	// ErrUserNotFound reports an update that touched no record. After a
	// token was successfully consumed this is a data-consistency defect,
	// not a user mistake.
	ErrUserNotFound = errors.New("user not found")
)
