package resolver

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// State is the lifecycle of the shared resolver.
type State int

const (
	// StateUnloaded means no load has completed yet.
	StateUnloaded State = iota
	// StateLoaded means the real resolver is available.
	StateLoaded
	// StateFailed means loading failed; the empty resolver stays in place.
	StateFailed
)

// Holder shares one resolver between concurrent readers.
//
// Readers always get a complete resolver through an atomic pointer; the
// value starts empty and is replaced by a single swap when loading
// finishes. Loading runs at most once: concurrent and late callers
// observe the terminal state instead of re-triggering the load.
type Holder struct {
	current atomic.Pointer[Resolver]
	group   singleflight.Group

	mu    sync.Mutex
	state State
	err   error
}

// NewHolder creates a holder seeded with the empty resolver.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(Empty())
	return h
}

// Get returns the current resolver. Never nil.
func (h *Holder) Get() *Resolver {
	return h.current.Load()
}

// State returns the lifecycle state and the load error, if any.
func (h *Holder) State() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.err
}

// Load runs the loader exactly once and swaps the result in atomically.
// Concurrent callers share the same load; callers arriving after a
// terminal state get that state's error without running the loader again.
func (h *Holder) Load(ctx context.Context, loader Loader) error {
	_, err, _ := h.group.Do("load", func() (any, error) {
		h.mu.Lock()
		state, loadErr := h.state, h.err
		h.mu.Unlock()
		if state != StateUnloaded {
			return nil, loadErr
		}

		res, err := loader(ctx)

		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			h.state = StateFailed
			h.err = err
			return nil, err
		}
		h.current.Store(res)
		h.state = StateLoaded
		return nil, nil
	})
	return err
}
