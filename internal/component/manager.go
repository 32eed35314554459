package component

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scanner is the collaborator that produces metadata for a component.
// Returning false means the component is unknown to the distribution;
// the manager remembers that and will not ask again this session.
type Scanner interface {
	Scan(ctx context.Context, name string) (Component, bool)
}

// Manager owns the persisted component cache and its background worker.
//
// The worker is the sole mutator of the cache. Request handlers call
// Enqueue, which never blocks, and Get, which returns an immutable
// snapshot. Shutdown is Close followed by Join; the session must not
// exit before Join returns or queued scan results may be lost.
type Manager struct {
	path    string
	scanner Scanner
	logger  *slog.Logger
	flush   time.Duration

	inbox     chan string
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu      sync.RWMutex
	db      Database
	started bool

	// Worker-owned state, touched only by the run goroutine.
	known map[string]bool
	dirty bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithFlushInterval sets how often the worker persists a dirty cache.
func WithFlushInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.flush = d
		}
	}
}

// WithInboxSize sets the scan queue capacity.
func WithInboxSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.inbox = make(chan string, size)
		}
	}
}

// LoadOrCreate reads the persisted cache from path, or starts empty if the
// file is missing or corrupt. The worker is not running until Start.
func LoadOrCreate(path string, scanner Scanner, opts ...ManagerOption) *Manager {
	m := &Manager{
		path:    path,
		scanner: scanner,
		logger:  slog.Default(),
		flush:   30 * time.Second,
		inbox:   make(chan string, 1024),
		closed:  make(chan struct{}),
		known:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	db, err := LoadDatabase(path)
	if err != nil {
		m.logger.Warn("starting with empty component database", "path", path, "error", err)
	}
	m.db = db
	for _, c := range db.Components {
		m.known[c.Name] = true
	}

	return m
}

// Start launches the background worker. A second Start is a contract
// violation and returns ErrAlreadyStarted without spawning anything.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	m.wg.Add(1)
	go m.run()
	return nil
}

// Enqueue submits a component name for scanning. It never blocks: if the
// inbox is full or the manager is closed, the request is dropped. A later
// protocol event re-enqueues anything still referenced.
func (m *Manager) Enqueue(name string) {
	select {
	case <-m.closed:
		return
	default:
	}

	select {
	case m.inbox <- name:
	default:
		m.logger.Debug("scan inbox full, dropping request", "component", name)
	}
}

// Get returns the current cache snapshot. The snapshot is immutable;
// the worker replaces the whole value when it learns something new.
func (m *Manager) Get() Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Close signals the worker to stop accepting work and drain what is left.
// Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.closed) })
}

// Join blocks until the worker has drained, persisted and exited, or the
// context is cancelled. Shutdown is not complete until Join returns.
func (m *Manager) Join(ctx context.Context) error {
	m.mu.RLock()
	started := m.started
	m.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the background worker. It alone mutates the cache.
func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.flush)
	defer ticker.Stop()

	for {
		select {
		case name := <-m.inbox:
			m.process(name)
		case <-ticker.C:
			m.persist()
		case <-m.closed:
			m.drain()
			m.persist()
			return
		}
	}
}

// drain processes everything still queued at close time.
func (m *Manager) drain() {
	for {
		select {
		case name := <-m.inbox:
			m.process(name)
		default:
			return
		}
	}
}

func (m *Manager) process(name string) {
	if m.known[name] {
		return
	}
	m.known[name] = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, ok := m.scanner.Scan(ctx, name)
	if !ok {
		return
	}

	m.mu.Lock()
	next := Database{Components: make([]Component, 0, len(m.db.Components)+1)}
	next.Components = append(next.Components, m.db.Components...)
	next.Components = append(next.Components, c)
	m.db = next
	m.mu.Unlock()

	m.dirty = true
	m.logger.Debug("scanned component", "component", name)
}

func (m *Manager) persist() {
	if !m.dirty {
		return
	}
	if err := SaveDatabase(m.path, m.Get()); err != nil {
		m.logger.Warn("persisting component database failed", "path", m.path, "error", err)
		return
	}
	m.dirty = false
}
