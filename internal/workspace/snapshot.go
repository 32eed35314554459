package workspace

import (
	"sort"

	"github.com/dshills/texd/internal/protocol"
)

// Snapshot is a point-in-time, read-only view of the workspace.
// It is safe for concurrent use and never changes after creation.
type Snapshot struct {
	byURI  map[protocol.DocumentURI]*Document
	byPath map[string]*Document
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		byURI:  make(map[protocol.DocumentURI]*Document),
		byPath: make(map[string]*Document),
	}
}

// clone returns a shallow copy suitable for copy-on-write mutation.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		byURI:  make(map[protocol.DocumentURI]*Document, len(s.byURI)+1),
		byPath: make(map[string]*Document, len(s.byPath)+1),
	}
	for uri, doc := range s.byURI {
		next.byURI[uri] = doc
	}
	for path, doc := range s.byPath {
		next.byPath[path] = doc
	}
	return next
}

// Find returns the document for a URI, or nil if unknown.
func (s *Snapshot) Find(uri protocol.DocumentURI) *Document {
	return s.byURI[uri]
}

// FindByPath returns the document for a filesystem path, or nil if unknown.
func (s *Snapshot) FindByPath(path string) *Document {
	return s.byPath[path]
}

// Count returns the number of known documents.
func (s *Snapshot) Count() int {
	return len(s.byURI)
}

// Documents returns all known documents, ordered by URI for determinism.
func (s *Snapshot) Documents() []*Document {
	docs := make([]*Document, 0, len(s.byURI))
	for _, doc := range s.byURI {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// resolves reports whether the include target resolves to the given document.
func (s *Snapshot) resolves(target IncludeTarget, doc *Document) bool {
	for _, candidate := range target.Candidates {
		if candidate == doc.Path {
			return true
		}
	}
	return false
}

// includes reports whether parent includes child, directly or transitively.
// A visited set guards against include cycles.
func (s *Snapshot) includes(parent, child *Document, visited map[protocol.DocumentURI]bool) bool {
	if visited[parent.URI] {
		return false
	}
	visited[parent.URI] = true

	for _, target := range parent.Includes {
		if s.resolves(target, child) {
			return true
		}
		for _, candidate := range target.Candidates {
			if next := s.byPath[candidate]; next != nil && s.includes(next, child, visited) {
				return true
			}
		}
	}
	return false
}

// FindParent returns a document that includes uri, directly or transitively,
// or nil if none is known. When several qualify, the one with the smallest
// URI wins so repeated calls are stable.
func (s *Snapshot) FindParent(uri protocol.DocumentURI) *Document {
	child := s.byURI[uri]
	if child == nil {
		return nil
	}

	for _, doc := range s.Documents() {
		if doc.URI == uri {
			continue
		}
		if s.includes(doc, child, make(map[protocol.DocumentURI]bool)) {
			return doc
		}
	}
	return nil
}

// UnresolvedIncludes returns the preferred candidate path of every include
// target that no known document satisfies. Paths are deduplicated and
// ordered by document URI, then directive order.
func (s *Snapshot) UnresolvedIncludes() []string {
	var paths []string
	seen := make(map[string]bool)

	for _, doc := range s.Documents() {
		for _, target := range doc.Includes {
			if len(target.Candidates) == 0 {
				continue
			}
			resolved := false
			for _, candidate := range target.Candidates {
				if _, ok := s.byPath[candidate]; ok {
					resolved = true
					break
				}
			}
			if resolved {
				continue
			}
			preferred := target.Candidates[len(target.Candidates)-1]
			if !seen[preferred] {
				seen[preferred] = true
				paths = append(paths, preferred)
			}
		}
	}

	return paths
}
