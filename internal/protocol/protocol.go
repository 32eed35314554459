// Package protocol defines the subset of the Language Server Protocol types
// that the coordination core exchanges with its transport and client
// collaborators. The wire framing itself lives outside this module.
package protocol

import (
	"context"
	"encoding/json"
	"net/url"
	"runtime"
	"strings"
)

// DocumentURI identifies a document, typically a file:// URI.
type DocumentURI string

// Position is a zero-based line/character offset in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [start, end) region in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// DiagnosticSeverity indicates how severe a diagnostic is.
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

// String returns the LSP name of the severity.
func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is a single analysis result attached to a document range.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// MessageType classifies a window/showMessage notification.
type MessageType int

const (
	MessageError   MessageType = 1
	MessageWarning MessageType = 2
	MessageInfo    MessageType = 3
	MessageLog     MessageType = 4
)

// ClientCapabilities carries the capability flags the core cares about.
// The transport fills this from the initialize request.
type ClientCapabilities struct {
	// DynamicWatchRegistration is true if the client supports
	// workspace/didChangeWatchedFiles dynamic registration.
	DynamicWatchRegistration bool

	// Configuration is true if the client supports workspace/configuration.
	Configuration bool
}

// FileWatcherRegistration describes a watch the server asks the client to run.
type FileWatcherRegistration struct {
	ID          string `json:"id"`
	GlobPattern string `json:"globPattern"`
}

// Client is the outbound collaborator interface. All methods may perform
// protocol round trips and honor the supplied context.
type Client interface {
	// PublishDiagnostics replaces the published diagnostics for a document.
	PublishDiagnostics(ctx context.Context, uri DocumentURI, diagnostics []Diagnostic) error

	// ShowMessage displays a user-facing message.
	ShowMessage(ctx context.Context, typ MessageType, message string) error

	// RegisterFileWatcher asks the client to watch files matching the glob.
	RegisterFileWatcher(ctx context.Context, reg FileWatcherRegistration) error

	// Configuration fetches the configuration value for a section.
	// The returned value is the raw JSON for that section.
	Configuration(ctx context.Context, section string) (json.RawMessage, error)
}

// URIToFilePath converts a file:// URI to a filesystem path.
// Non-file URIs are returned unchanged.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}

	u, err := url.Parse(string(uri))
	if err != nil {
		return string(uri)
	}

	if u.Scheme != "file" {
		return string(uri)
	}

	path := u.Path

	// On Windows, remove leading slash before drive letter
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return path
}

// FilePathToURI converts a filesystem path to a file:// URI.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "file://") {
		return DocumentURI(path)
	}

	p := path
	if runtime.GOOS == "windows" {
		p = "/" + strings.ReplaceAll(p, "\\", "/")
	}

	u := url.URL{Scheme: "file", Path: p}
	return DocumentURI(u.String())
}

// IsFile reports whether the URI uses the file scheme.
func (u DocumentURI) IsFile() bool {
	return strings.HasPrefix(string(u), "file://")
}
