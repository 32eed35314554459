// Package watch provides a local fallback watcher for build logs, used
// when the client does not support dynamic file-watch registration.
// Events are debounced per path so a build writing its log in bursts
// surfaces as a single change.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives the path of a build log that changed.
type Handler func(path string)

// LogWatcher watches directories for *.log creation and writes.
type LogWatcher struct {
	fw       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	handler  Handler

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Option configures a LogWatcher.
type Option func(*LogWatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *LogWatcher) {
		w.logger = logger
	}
}

// New creates a log watcher delivering debounced events to handler.
func New(debounce time.Duration, handler Handler, opts ...Option) (*LogWatcher, error) {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &LogWatcher{
		fw:       fw,
		logger:   slog.Default(),
		debounce: debounce,
		handler:  handler,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Watch adds a directory to the watch set. Watching the same directory
// twice is a no-op at the fsnotify level.
func (w *LogWatcher) Watch(dir string) error {
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Close stops the watcher and cancels pending deliveries.
func (w *LogWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()

		w.mu.Lock()
		w.closed = true
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.wg.Wait()
	})
	return err
}

func (w *LogWatcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".log" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("log watcher error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *LogWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()

		if !closed {
			w.handler(path)
		}
	})
}
