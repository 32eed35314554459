package workspace

import (
	"path/filepath"
	"strings"
)

// Language identifies the source type of a document.
type Language int

const (
	// LanguageLatex covers .tex, .sty, .cls and .lco files.
	LanguageLatex Language = iota
	// LanguageBibtex covers .bib files.
	LanguageBibtex
)

// String returns the language identifier.
func (l Language) String() string {
	switch l {
	case LanguageLatex:
		return "latex"
	case LanguageBibtex:
		return "bibtex"
	default:
		return "unknown"
	}
}

// LanguageByExtension returns the language for a file path.
// The second return value is false for unsupported extensions.
func LanguageByExtension(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".sty", ".cls", ".lco":
		return LanguageLatex, true
	case ".bib":
		return LanguageBibtex, true
	default:
		return 0, false
	}
}
