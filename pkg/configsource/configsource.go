// Package configsource loads the dynamic group topology that
// pkg/scheduler.Configure consumes from an external source (a local
// YAML file or an S3 object) and watches that source for changes,
// the way a DittoFS node watches its control-plane database for
// share/store edits without requiring a restart.
package configsource

import (
	"context"
	"errors"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// ErrNoUpdate reports that a source was checked but its content has
// not changed since the last successful read. No Source in this
// package returns it; change detection happens inside Watcher.Watch.
var ErrNoUpdate = errors.New("configsource: no update available")

// Source produces group topology snapshots. Snapshot performs a
// blocking, unconditional read.
type Source interface {
	Snapshot(ctx context.Context) (groups.Options, error)
}

// Watcher is implemented by Sources that can push updates rather than
// be polled. Watch blocks until ctx is cancelled, invoking onUpdate
// once per detected change with the freshly decoded snapshot. A
// decode or validation failure is reported through onError and does
// not stop the watch loop, matching the fail-open posture described
// for a misconfigured reload (the scheduler keeps running on its last
// good Configure call).
type Watcher interface {
	Source
	Watch(ctx context.Context, onUpdate func(groups.Options), onError func(error)) error
}

// Cache persists the last successfully decoded snapshot so a Source
// that is temporarily unreachable (network partition, missing file)
// can still serve a coherent topology on startup.
type Cache interface {
	Load(ctx context.Context) (groups.Options, bool, error)
	Store(ctx context.Context, opts groups.Options) error
}
