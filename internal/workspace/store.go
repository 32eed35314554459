package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/texd/internal/protocol"
)

// Store is the concurrent registry of known documents.
//
// Mutation is serialized by a single writer lock; readers take an atomic
// Snapshot and never block a writer. Every mutation replaces the whole
// snapshot (copy-on-write), so an in-flight reader keeps a consistent view.
type Store struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	parser   Parser
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store using the given parser for LaTeX sources.
func NewStore(parser Parser, opts ...StoreOption) *Store {
	s := &Store{
		parser: parser,
		logger: slog.Default(),
	}
	s.snapshot.Store(emptySnapshot())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current point-in-time view.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// add inserts or replaces a document. Caller must hold s.mu.
func (s *Store) add(doc *Document) *Document {
	snap := s.snapshot.Load()
	prev := snap.byURI[doc.URI]

	next := snap.clone()
	next.byURI[doc.URI] = doc
	if prev != nil && prev.Path != "" && prev.Path != doc.Path {
		delete(next.byPath, prev.Path)
	}
	if doc.Path != "" {
		next.byPath[doc.Path] = doc
	}
	s.snapshot.Store(next)
	return prev
}

// Add inserts or replaces the document for uri and returns the previous
// version, if any.
func (s *Store) Add(uri protocol.DocumentURI, text string, language Language) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := int32(1)
	if prev := s.snapshot.Load().byURI[uri]; prev != nil {
		version = prev.Version + 1
	}
	doc := newDocument(uri, text, language, version, s.parser)
	return s.add(doc)
}

// Update replaces the text of a known document, re-deriving its parse data.
// Returns ErrDocumentNotFound if the URI is unknown.
func (s *Store) Update(uri protocol.DocumentURI, text string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot.Load().byURI[uri]
	if prev == nil {
		return nil, fmt.Errorf("update %s: %w", uri, ErrDocumentNotFound)
	}

	doc := newDocument(uri, text, prev.Language, prev.Version+1, s.parser)
	s.add(doc)
	return doc, nil
}

// Load reads a document from disk and adds it to the store.
//
// Loading an already-known path is a no-op returning the existing document,
// which is what makes repeated child detection idempotent. Unsupported
// extensions return ErrUnsupportedLanguage; missing files return the
// underlying I/O error.
func (s *Store) Load(path string) (*Document, error) {
	language, ok := LanguageByExtension(path)
	if !ok {
		return nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedLanguage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.snapshot.Load().byPath[path]; existing != nil {
		return existing, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	uri := protocol.FilePathToURI(path)
	doc := newDocument(uri, string(content), language, 1, s.parser)
	if info, err := os.Stat(path); err == nil {
		doc.ModTime = info.ModTime()
	}
	s.add(doc)
	s.logger.Debug("loaded document", "path", path, "language", language.String())
	return doc, nil
}
