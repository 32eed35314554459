// Package workspace tracks the set of known documents and their include
// relationships. Documents are immutable values: an edit produces a new
// Document under the same URI, so a reader holding a Snapshot never sees
// a half-applied change.
package workspace

import (
	"path/filepath"
	"time"

	"github.com/dshills/texd/internal/latex"
	"github.com/dshills/texd/internal/protocol"
)

// Parser extracts the derived data the store needs from document text.
// Implementations own the syntax details; the store treats the result as
// opaque beyond includes and components.
type Parser interface {
	Parse(text string) latex.ScanResult
}

// IncludeTarget is one inclusion directive with its resolution candidates.
type IncludeTarget struct {
	// Raw is the directive argument as written.
	Raw string

	// Candidates are the absolute paths the target may resolve to,
	// in preference order. Empty for documents without a file path.
	Candidates []string
}

// Document is an immutable snapshot of one source file.
type Document struct {
	// URI identifies the document.
	URI protocol.DocumentURI

	// Path is the filesystem path, or empty for non-file URIs.
	Path string

	// Text is the full document content.
	Text string

	// Language is detected from the file extension.
	Language Language

	// Version increments on each replacement under the same URI.
	Version int32

	// ModTime is the file's modification time for disk-loaded documents,
	// zero for documents received over the protocol.
	ModTime time.Time

	// Includes are the file-inclusion directives found in the text.
	Includes []IncludeTarget

	// Components are the package/class file names the document references.
	Components []string
}

// newDocument builds a Document, running the parser for LaTeX sources.
// BibTeX documents carry no includes or components.
func newDocument(uri protocol.DocumentURI, text string, language Language, version int32, parser Parser) *Document {
	doc := &Document{
		URI:      uri,
		Path:     uriPath(uri),
		Text:     text,
		Language: language,
		Version:  version,
	}

	if language == LanguageLatex && parser != nil {
		scan := parser.Parse(text)
		doc.Includes = resolveIncludes(doc.Path, scan.Includes)
		doc.Components = scan.Components
	}

	return doc
}

func uriPath(uri protocol.DocumentURI) string {
	if !uri.IsFile() {
		return ""
	}
	return filepath.Clean(protocol.URIToFilePath(uri))
}

// resolveIncludes turns raw directive arguments into absolute candidate paths
// relative to the including document's directory. Targets written without an
// extension get the language-appropriate default appended as a second candidate.
func resolveIncludes(docPath string, includes []latex.Include) []IncludeTarget {
	if len(includes) == 0 {
		return nil
	}

	targets := make([]IncludeTarget, 0, len(includes))
	baseDir := ""
	if docPath != "" {
		baseDir = filepath.Dir(docPath)
	}

	for _, inc := range includes {
		target := IncludeTarget{Raw: inc.Target}
		if baseDir != "" {
			joined := filepath.Clean(filepath.Join(baseDir, inc.Target))
			target.Candidates = append(target.Candidates, joined)
			if filepath.Ext(inc.Target) == "" {
				ext := ".tex"
				if inc.Kind == latex.IncludeBib {
					ext = ".bib"
				}
				target.Candidates = append(target.Candidates, joined+ext)
			}
		}
		targets = append(targets, target)
	}

	return targets
}
