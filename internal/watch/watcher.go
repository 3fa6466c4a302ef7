// Package watch publishes file change events for a directory tree.
//
// A Watcher registers a base directory and every subdirectory beneath it with
// fsnotify, debounces the raw notification stream, and publishes one
// FileChangedEvent per settled path on the event bus. Directories created
// while watching are registered as they appear.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/event"
	"github.com/Iron-Ham/packrat/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher watches a directory tree and publishes a FileChangedEvent for each
// create, write, remove, and rename once the debounce window closes. Paths
// whose base name matches an ignore pattern are dropped, and ignored
// directories are never registered with the underlying watcher.
type Watcher struct {
	fw  *fsnotify.Watcher
	bus *event.Bus
	log *logging.Logger

	root     string
	debounce time.Duration
	ignore   []string
	globs    []glob.Glob

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option adjusts a Watcher before it starts.
type Option func(*Watcher)

// WithBus publishes change events to bus.
func WithBus(bus *event.Bus) Option {
	return func(w *Watcher) { w.bus = bus }
}

// WithLogger routes watcher logging to log.
func WithLogger(log *logging.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithDebounce sets how long the watcher waits after the last raw
// notification for a path before publishing. Values at or below zero keep
// the default of 250ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore replaces the default ignore patterns (".git"). Patterns are
// glob expressions matched against the base name of each changed path.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) { w.ignore = patterns }
}

// New prepares a watcher rooted at root, which must be an existing directory.
// Call Start to register the tree and begin publishing.
func New(root string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("watch path does not exist").
			WithField("root").
			WithValue(root).
			WithCause(err)
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidArgumentError("watch path is not a directory").
			WithField("root").
			WithValue(root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{
		fw:       fw,
		log:      logging.NopLogger(),
		root:     filepath.Clean(root),
		debounce: defaultDebounce,
		ignore:   []string{".git"},
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}

	for _, pattern := range w.ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			_ = fw.Close()
			return nil, errors.NewInvalidArgumentError("failed to compile ignore pattern").
				WithField("watch.ignore").
				WithValue(pattern).
				WithCause(err)
		}
		w.globs = append(w.globs, g)
	}

	return w, nil
}

// Root returns the directory the watcher covers.
func (w *Watcher) Root() string {
	return w.root
}

// Start registers the directory tree and begins publishing change events.
// Starting an already started watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil
	}

	if err := w.fw.Add(w.root); err != nil {
		return errors.NewIOError("failed to watch directory", err).
			WithOp("watch").
			WithPath(w.root)
	}
	w.watchTree(w.root)
	w.started = true

	w.log.Info("watching directory",
		"root", w.root,
		"debounce", w.debounce.String())

	go w.loop()
	return nil
}

// Stop ends the watch loop and releases the underlying watcher. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fw.Close()
	})
}

// Run starts the watcher and blocks until ctx is done, then stops it.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// watchTree registers root and every non-ignored subdirectory beneath it.
// Only directories can be watched with fsnotify.
func (w *Watcher) watchTree(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if werr := w.fw.Add(path); werr != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", werr)
		}
		return nil
	})
}

// ignored reports whether the base name of path matches an ignore pattern.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.globs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// loop drains raw notifications into a pending set and publishes the settled
// changes once the debounce window closes. Editors fire several notifications
// for a single save; the pending set collapses them to one event per path.
func (w *Watcher) loop() {
	timer := time.NewTimer(0)
	<-timer.C // drain the initial firing

	pending := make(map[string]event.ChangeType)

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			change, ok := changeType(ev.Op)
			if !ok {
				continue
			}
			if w.ignored(ev.Name) {
				continue
			}
			if prev, ok := pending[ev.Name]; ok {
				change = merge(prev, change)
			}
			pending[ev.Name] = change
			timer.Reset(w.debounce)

		case <-timer.C:
			flushed := pending
			pending = make(map[string]event.ChangeType)
			for path, change := range flushed {
				w.handle(path, change)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// handle publishes a single settled change. New directories are registered
// before the event goes out, so a subscriber reacting to the event already
// has the directory covered.
func (w *Watcher) handle(path string, change event.ChangeType) {
	if change == event.ChangeCreate {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.watchTree(path)
			w.log.Debug("watching new directory", "path", path)
		}
	}

	w.log.Debug("file changed", "path", path, "change", change.String())
	w.publish(event.NewFileChangedEvent(path, change))
}

func (w *Watcher) publish(e event.Event) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(e)
}

// changeType maps an fsnotify operation to a change type. Chmod-only
// notifications are dropped.
func changeType(op fsnotify.Op) (event.ChangeType, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return event.ChangeCreate, true
	case op&fsnotify.Remove != 0:
		return event.ChangeRemove, true
	case op&fsnotify.Rename != 0:
		return event.ChangeRename, true
	case op&fsnotify.Write != 0:
		return event.ChangeWrite, true
	default:
		return 0, false
	}
}

// merge collapses two changes seen for one path inside a debounce window.
// A create followed by writes is still a create; anything else takes the
// later change.
func merge(prev, next event.ChangeType) event.ChangeType {
	if prev == event.ChangeCreate && next == event.ChangeWrite {
		return prev
	}
	return next
}
