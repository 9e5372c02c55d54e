package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// recorder collects events delivered to a handler.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// waitFor polls until cond holds or two seconds pass.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{0, "none"},
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{OpCreate | OpWrite, "create|write"},
		{Op(0x80), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.yaml")
	w := newWatcher(t)

	for _, p := range []string{a, b, a} {
		if err := w.Watch(p); err != nil {
			t.Fatalf("Watch(%s): %v", p, err)
		}
	}
	if got := w.WatchedFiles(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("WatchedFiles = %v, want [%s %s]", got, a, b)
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	if err := w.Unwatch(a); err != nil {
		t.Fatalf("second Unwatch: %v", err)
	}
	if got := w.WatchedFiles(); len(got) != 1 || got[0] != b {
		t.Errorf("WatchedFiles = %v, want [%s]", got, b)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "c.toml")); err == nil {
		t.Error("Watch in a missing directory should fail")
	}
}

func TestWatcher_Closed(t *testing.T) {
	w := newWatcher(t)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "x.toml")); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcher_DetectsModification(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(file, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(file); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(file, []byte("modified"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("did not receive file change event")
	}
	e := rec.snapshot()[0]
	if !e.Op.Has(OpWrite) {
		t.Errorf("event.Op = %v, want write", e.Op)
	}
	if e.Path != file {
		t.Errorf("event.Path = %q, want %q", e.Path, file)
	}
}

func TestWatcher_DetectsCreationAndIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "new.yaml")

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(file); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("created"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("did not receive file creation event")
	}
	for _, e := range rec.snapshot() {
		if e.Path != file {
			t.Errorf("event for unwatched file %q", e.Path)
		}
	}
	if !rec.snapshot()[0].Op.Has(OpCreate) {
		t.Errorf("first event = %v, want create", rec.snapshot()[0].Op)
	}
}

func TestWatcher_DetectsDeletion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.toml")
	if err := os.WriteFile(file, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(file); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("did not receive file deletion event")
	}
	if !rec.snapshot()[0].Op.Has(OpRemove) {
		t.Errorf("event.Op = %v, want remove", rec.snapshot()[0].Op)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "debounce.toml")
	if err := os.WriteFile(file, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(150*time.Millisecond))
	var count atomic.Int32
	w.OnChange(func(Event) { count.Add(1) })
	if err := w.Watch(file); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(file, []byte("modified"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, func() bool { return count.Load() > 0 }) {
		t.Fatal("did not receive debounced event")
	}
	time.Sleep(300 * time.Millisecond)
	if n := count.Load(); n != 1 {
		t.Errorf("received %d events, want 1", n)
	}
}

func TestWatcher_HandlerPanic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "panic.toml")
	if err := os.WriteFile(file, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(0))
	var count atomic.Int32
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { count.Add(1) })
	if err := w.Watch(file); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(file, []byte("modified"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return count.Load() > 0 }) {
		t.Error("handler after a panicking one was not called")
	}
}

func TestWatcher_EventOrder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "order.toml")
	sequence := []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Chmod, fsnotify.Write, fsnotify.Remove}

	tests := []struct {
		name     string
		debounce time.Duration
		want     []Op
	}{
		{"immediate", 0, []Op{OpCreate, OpWrite, OpWrite, OpRemove}},
		{"debounced", 20 * time.Millisecond, []Op{OpCreate | OpWrite | OpRemove}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatcher(t, WithDebounce(tt.debounce))
			var rec recorder
			w.OnChange(rec.handle)
			if err := w.Watch(file); err != nil {
				t.Fatal(err)
			}

			for _, op := range sequence {
				w.handle(fsnotify.Event{Name: file, Op: op})
			}
			if !waitFor(t, func() bool { return len(rec.snapshot()) >= len(tt.want) }) {
				t.Fatalf("got %d events, want %d", len(rec.snapshot()), len(tt.want))
			}
			got := rec.snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Op != tt.want[i] || e.Path != file {
					t.Errorf("event %d = %v %s, want %v", i, e.Op, e.Path, tt.want[i])
				}
			}
		})
	}
}
