package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/mediaplug/observability"
)

type fakeRegistry struct {
	mu      sync.Mutex
	dirs    []string
	rescans atomic.Int32
}

func (r *fakeRegistry) SearchDirectories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dirs...)
}

func (r *fakeRegistry) Rescan() { r.rescans.Add(1) }

func TestWatcherRescansOnChange(t *testing.T) {
	dir := t.TempDir()
	reg := &fakeRegistry{dirs: []string{dir}}

	w, err := New(reg, WithLogger(observability.Discard()), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "engine"+string(rune('a'+i))+".so")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool { return reg.rescans.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Less(t, reg.rescans.Load(), int32(5), "events are coalesced")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherClose(t *testing.T) {
	reg := &fakeRegistry{dirs: []string{t.TempDir()}}
	w, err := New(reg, WithLogger(observability.Discard()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	reg := &fakeRegistry{dirs: []string{filepath.Join(t.TempDir(), "gone")}}
	_, err := New(reg, WithLogger(observability.Discard()))
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(fsnotify.Event{Name: "/p/a.so", Op: fsnotify.Create}))
	assert.True(t, relevant(fsnotify.Event{Name: "/p/a.so", Op: fsnotify.Remove}))
	assert.False(t, relevant(fsnotify.Event{Name: "/p/a.so", Op: fsnotify.Chmod}))
	assert.False(t, relevant(fsnotify.Event{Name: "/p/.a.so.tmp", Op: fsnotify.Create}))
}
