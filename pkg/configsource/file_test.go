package configsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

const sampleYAML = `
global_slots: 10
default:
  slots: 4
  strategy: fifo
leechers:
  slots: 2
  strategy: fifo
groups:
  - name: vip
    priority: 1
    slots: 4
    strategy: round_robin
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestFileSource_SnapshotDecodesDocument(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	source, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	opts, err := source.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if opts.GlobalSlots != 10 {
		t.Fatalf("expected global_slots 10, got %d", opts.GlobalSlots)
	}
	if opts.Default.Slots != 4 || opts.Default.Strategy != groups.FirstInFirstOut {
		t.Fatalf("unexpected default group: %+v", opts.Default)
	}
	vip, ok := opts.UserDefined["vip"]
	if !ok {
		t.Fatalf("expected vip group to be present")
	}
	if vip.Priority != 1 || vip.Slots != 4 || vip.Strategy != groups.RoundRobin {
		t.Fatalf("unexpected vip group: %+v", vip)
	}
}

func TestFileSource_MissingFileErrors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileSource_InvalidStrategyRejected(t *testing.T) {
	path := writeTempConfig(t, `
global_slots: 10
default:
  slots: 4
  strategy: bogus
leechers:
  slots: 2
  strategy: fifo
`)
	source, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	if _, err := source.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected decode error for invalid strategy")
	}
}

func TestFileSource_WatchFiresOnChange(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	source, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan groups.Options, 1)
	errs := make(chan error, 1)
	go func() {
		_ = source.Watch(ctx, func(o groups.Options) { updates <- o }, func(e error) { errs <- e })
	}()

	time.Sleep(100 * time.Millisecond)
	updated := `
global_slots: 20
default:
  slots: 8
  strategy: fifo
leechers:
  slots: 2
  strategy: fifo
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case opts := <-updates:
		if opts.GlobalSlots != 20 {
			t.Fatalf("expected global_slots 20 after update, got %d", opts.GlobalSlots)
		}
	case err := <-errs:
		t.Fatalf("unexpected decode error: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for watch update")
	}
}
