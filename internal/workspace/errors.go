package workspace

import "errors"

// Standard errors returned by the workspace store.
var (
	// ErrDocumentNotFound indicates no document is known under the URI.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnsupportedLanguage indicates the file extension is not a
	// supported source type.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
