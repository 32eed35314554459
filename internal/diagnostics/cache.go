// Package diagnostics caches per-document analysis results from the lint
// and build collaborators and merges them on read. Each source's entry for
// a document is replaced wholesale, never patched, so a reader can never
// observe a partially-updated list.
package diagnostics

import (
	"sync"

	"github.com/dshills/texd/internal/protocol"
)

// Cache holds lint-sourced and build-sourced diagnostics independently.
type Cache struct {
	mu    sync.RWMutex
	lint  map[protocol.DocumentURI][]protocol.Diagnostic
	build map[protocol.DocumentURI][]protocol.Diagnostic
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		lint:  make(map[protocol.DocumentURI][]protocol.Diagnostic),
		build: make(map[protocol.DocumentURI][]protocol.Diagnostic),
	}
}

// Get returns the merged diagnostics for a document, lint first.
// The returned slice is a copy owned by the caller.
func (c *Cache) Get(uri protocol.DocumentURI) []protocol.Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	merged := make([]protocol.Diagnostic, 0, len(c.lint[uri])+len(c.build[uri]))
	merged = append(merged, c.lint[uri]...)
	merged = append(merged, c.build[uri]...)
	return merged
}

// UpdateLint replaces the lint diagnostics for a document.
func (c *Cache) UpdateLint(uri protocol.DocumentURI, diagnostics []protocol.Diagnostic) {
	c.mu.Lock()
	c.lint[uri] = diagnostics
	c.mu.Unlock()
}

// UpdateBuild replaces the build diagnostics for a document.
func (c *Cache) UpdateBuild(uri protocol.DocumentURI, diagnostics []protocol.Diagnostic) {
	c.mu.Lock()
	c.build[uri] = diagnostics
	c.mu.Unlock()
}
