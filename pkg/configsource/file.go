package configsource

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// FileSource reads the group topology from a local YAML file and
// watches it for edits with fsnotify, the way the teacher's own
// pkg/config.Load reads its YAML config with viper and the teacher's
// `dittofs config watch` workflow relies on fsnotify-driven reloads.
type FileSource struct {
	v *viper.Viper
}

// NewFileSource builds a FileSource rooted at path. The file must
// exist; unlike pkg/config.Load's "missing file means defaults"
// behavior, a missing group topology file is a startup error since
// there is no sane default set of user-defined groups.
func NewFileSource(path string) (*FileSource, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("configsource: read %s: %w", path, err)
	}
	return &FileSource{v: v}, nil
}

// Snapshot re-reads and decodes the file unconditionally.
func (f *FileSource) Snapshot(ctx context.Context) (groups.Options, error) {
	if err := ctx.Err(); err != nil {
		return groups.Options{}, err
	}
	if err := f.v.ReadInConfig(); err != nil {
		return groups.Options{}, fmt.Errorf("configsource: reread %s: %w", f.v.ConfigFileUsed(), err)
	}
	var doc document
	if err := f.v.Unmarshal(&doc); err != nil {
		return groups.Options{}, fmt.Errorf("configsource: decode %s: %w", f.v.ConfigFileUsed(), err)
	}
	return decodeDocument(doc)
}

// debounceInterval bounds how often a burst of fsnotify events (an
// editor saving via rename-into-place fires more than one event per
// save) triggers a re-decode.
const debounceInterval = 200 * time.Millisecond

// Watch blocks until ctx is cancelled, invoking onUpdate once per
// debounced write to the underlying file. Decode/validation failures
// are routed to onError without tearing down the watch.
func (f *FileSource) Watch(ctx context.Context, onUpdate func(groups.Options), onError func(error)) error {
	f.v.WatchConfig()
	changed := make(chan struct{}, 1)
	f.v.OnConfigChange(func(fsnotify.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			timer.Reset(debounceInterval)
		case <-timer.C:
			// viper has already re-read the file internally by the
			// time OnConfigChange fires; Snapshot re-reads again to
			// pick up the freshest decode hooks and validation.
			opts, err := f.Snapshot(ctx)
			if err != nil {
				onError(err)
				continue
			}
			onUpdate(opts)
		}
	}
}
