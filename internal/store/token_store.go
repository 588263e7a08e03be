// Package store provides the ephemeral token store: a TTL-keyed
// key-value capability holding single-use action tokens and the
// currently valid refresh token per subject. Entries expire
// autonomously; nothing here runs a cleanup sweep.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or already expired.
// Callers treat it as a normal condition (revoked, consumed or timed out),
// not as a store failure.
var ErrNotFound = errors.New("token not found")

// TokenStore is the ephemeral TTL key-value capability consumed by the
// session lifecycle service.
type TokenStore interface {
	// Put sets key=value with the given TTL, overwriting any existing
	// value. Overwriting the refresh_token key is the mechanism that
	// revokes a previously issued refresh token.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get reads a value without consuming it.
	Get(ctx context.Context, key string) (string, error)
	// TakeDelete atomically reads and deletes a key. When two callers
	// race on the same key exactly one receives the value; the other
	// gets ErrNotFound. Single-use action tokens rely on this.
	TakeDelete(ctx context.Context, key string) (string, error)
	// Delete removes a key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Key namespaces shared with every store implementation. The values match
// the keys of existing deployments, so a running Redis can be taken over
// without invalidating outstanding tokens.
const (
	verificationPrefix  = "verification:"
	passwordResetPrefix = "password_reset:"
	refreshTokenPrefix  = "refresh_token:"
)

// VerificationKey builds the storage key for an email verification token.
func VerificationKey(token string) string { return verificationPrefix + token }

// PasswordResetKey builds the storage key for a password reset token.
func PasswordResetKey(token string) string { return passwordResetPrefix + token }

// RefreshTokenKey builds the storage key tracking a subject's refresh token.
func RefreshTokenKey(email string) string { return refreshTokenPrefix + email }
