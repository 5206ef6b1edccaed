package scheduler

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the scheduler's public operations, per
// spec.md §7's error taxonomy. Callers should use errors.Is against
// these, not against SchedulerError itself.
var (
	// ErrNotEnqueued means the requested (username, filename) pair has
	// no corresponding Upload in the Registry. Surfaced from
	// AwaitStart, Complete, and the 2-arg EstimatePosition.
	ErrNotEnqueued = errors.New("scheduler: not enqueued")

	// ErrMisconfiguration means a configuration snapshot failed
	// validation: an invalid strategy string, a negative slot count,
	// or a priority collision with the privileged group. The
	// Configurator logs this and retains its last valid state.
	ErrMisconfiguration = errors.New("scheduler: misconfiguration")

	// ErrAlreadyReady is a caller error: AwaitStart was called a
	// second time for an Upload that already has ready_at set.
	// spec.md §4.3 documents this as invalid caller usage.
	ErrAlreadyReady = errors.New("scheduler: already awaiting start")
)

// SchedulerError wraps a sentinel error with the operational context
// needed to diagnose it, following the teacher's PayloadError pattern
// (pkg/payload/errors.go): a sentinel stays matchable via errors.Is
// while the wrapper carries operation, peer, and group context for
// logs.
type SchedulerError struct {
	// Op names the operation that failed: "enqueue", "await_start",
	// "complete", "configure", "estimate_position".
	Op string

	// Username is the peer the operation concerned, if any.
	Username string

	// Filename is the upload the operation concerned, if any.
	Filename string

	// Group is the group name involved, if the error arose from
	// group validation.
	Group string

	// Err is the wrapped sentinel error.
	Err error
}

func (e *SchedulerError) Error() string {
	switch {
	case e.Filename != "":
		return fmt.Sprintf("scheduler %s: %s (user=%s, file=%s)", e.Op, e.Err, e.Username, e.Filename)
	case e.Username != "":
		return fmt.Sprintf("scheduler %s: %s (user=%s)", e.Op, e.Err, e.Username)
	case e.Group != "":
		return fmt.Sprintf("scheduler %s: %s (group=%s)", e.Op, e.Err, e.Group)
	default:
		return fmt.Sprintf("scheduler %s: %s", e.Op, e.Err)
	}
}

func (e *SchedulerError) Unwrap() error {
	return e.Err
}

func newNotEnqueuedError(op, username, filename string) *SchedulerError {
	return &SchedulerError{Op: op, Username: username, Filename: filename, Err: ErrNotEnqueued}
}

func newMisconfigurationError(group string, err error) *SchedulerError {
	return &SchedulerError{Op: "configure", Group: group, Err: fmt.Errorf("%w: %v", ErrMisconfiguration, err)}
}
