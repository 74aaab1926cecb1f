// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the moderation engine to distinguish between different
// failure scenarios without string-matching driver diagnostics.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row, or when a
// conditional update matches no row because the row's current state does
// not satisfy the predicate (e.g. unbanning a user who is not banned).
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as provisioning a second account with the same email.
// Handlers translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")
