// Package watch rescans a registry when its search directories change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a rescan.
const DefaultDebounce = 500 * time.Millisecond

// Registry is the part of *mediaplug.Registry the watcher drives.
type Registry interface {
	SearchDirectories() []string
	Rescan()
}

// Watcher coalesces file events in the search directories into rescans.
type Watcher struct {
	reg      Registry
	log      logrus.FieldLogger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithDebounce sets the quiet period. d <= 0 rescans on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New watches every current search directory of reg.
func New(reg Registry, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		reg:      reg,
		log:      logrus.StandardLogger(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range reg.SearchDirectories() {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.log.WithField("dir", dir).Debug("Watching search directory")
	}
	w.watcher = fw
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("Search directory changed")
			if w.debounce <= 0 {
				w.rescan()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.rescan()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

// Close stops the watcher; Run returns nil.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) rescan() {
	w.log.Info("Rescanning search directories")
	w.reg.Rescan()
}

// relevant filters out chmod-only events and dotfiles.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !strings.HasPrefix(filepath.Base(event.Name), ".")
}
