// Package userservice resolves a peer username to its current group
// name, the one external collaborator the scheduler consults as an
// opaque lookup on every Admission Loop pass (spec.md §6).
package userservice

import (
	"context"
	"errors"
)

// ErrUserNotFound means a peer has no stored assignment. Neither
// implementation returns it to callers: the persistent Store uses it
// inside GroupOf, which then reports the empty group with a nil
// error, and its Assign creates a record for a peer it has not seen.
var ErrUserNotFound = errors.New("userservice: user not found")

// UserService matches the narrow interface the scheduler consumes.
// Implementations must be safe for concurrent use; GroupOf is called
// from the Admission Loop while the scheduler's lock is held, so it
// must not itself try to acquire any lock the scheduler could be
// waiting on.
type UserService interface {
	GroupOf(ctx context.Context, username string) (string, error)
}

// Assigner is implemented by UserServices that allow operator
// reassignment of a peer's group, exposed through the admin API's
// POST /v1/peers/{username}/group endpoint.
type Assigner interface {
	Assign(ctx context.Context, username, group string) error
}
