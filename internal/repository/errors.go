// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist OR exists but is not
// owned by the caller. The two cases share one sentinel on purpose:
// handlers translate both into the same 404 response so that the API never
// leaks whether another tenant's row exists.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email. Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
