// Package repository defines error types that are reused across the
// persistence layer. These sentinel values allow higher layers such as
// the session lifecycle service to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// email constraint. Registration discloses this condition to the caller.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no user record.
var ErrNotFound = errors.New("user not found")
