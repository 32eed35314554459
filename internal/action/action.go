// Package action defines the deferred follow-up work units pushed by
// protocol handlers and drained by the server's dispatch loop.
//
// Actions carry only URIs and paths, never live references, so a queued
// action stays valid no matter how the workspace changes before it runs.
package action

import "github.com/dshills/texd/internal/protocol"

// Kind discriminates the action variants.
type Kind int

const (
	// KindRegisterCapabilities registers the build-log file watcher.
	KindRegisterCapabilities Kind = iota
	// KindLoadResolver bootstraps the path resolver.
	KindLoadResolver
	// KindLoadComponentDatabase bootstraps the component database worker.
	KindLoadComponentDatabase
	// KindDetectRoot walks ancestor directories for the root document.
	KindDetectRoot
	// KindDetectChildren loads unresolved include targets from disk.
	KindDetectChildren
	// KindPublishDiagnostics publishes merged diagnostics for all documents.
	KindPublishDiagnostics
	// KindRunLinter lints a document if on-save linting is enabled.
	KindRunLinter
	// KindParseLog parses a build log into build diagnostics.
	KindParseLog
	// KindBuild builds a document if on-save building is enabled.
	KindBuild
	// KindScanComponents feeds referenced components to the scan worker.
	KindScanComponents
)

// String returns the action name.
func (k Kind) String() string {
	switch k {
	case KindRegisterCapabilities:
		return "register-capabilities"
	case KindLoadResolver:
		return "load-resolver"
	case KindLoadComponentDatabase:
		return "load-component-database"
	case KindDetectRoot:
		return "detect-root"
	case KindDetectChildren:
		return "detect-children"
	case KindPublishDiagnostics:
		return "publish-diagnostics"
	case KindRunLinter:
		return "run-linter"
	case KindParseLog:
		return "parse-log"
	case KindBuild:
		return "build"
	case KindScanComponents:
		return "scan-components"
	default:
		return "unknown"
	}
}

// Action is one deferred unit of follow-up work.
type Action struct {
	Kind Kind

	// URI is set for DetectRoot, RunLinter, Build and ParseLog.
	URI protocol.DocumentURI

	// LogPath is set for ParseLog.
	LogPath string
}

// RegisterCapabilities returns a KindRegisterCapabilities action.
func RegisterCapabilities() Action {
	return Action{Kind: KindRegisterCapabilities}
}

// LoadResolver returns a KindLoadResolver action.
func LoadResolver() Action {
	return Action{Kind: KindLoadResolver}
}

// LoadComponentDatabase returns a KindLoadComponentDatabase action.
func LoadComponentDatabase() Action {
	return Action{Kind: KindLoadComponentDatabase}
}

// DetectRoot returns a KindDetectRoot action for uri.
func DetectRoot(uri protocol.DocumentURI) Action {
	return Action{Kind: KindDetectRoot, URI: uri}
}

// DetectChildren returns a KindDetectChildren action.
func DetectChildren() Action {
	return Action{Kind: KindDetectChildren}
}

// PublishDiagnostics returns a KindPublishDiagnostics action.
func PublishDiagnostics() Action {
	return Action{Kind: KindPublishDiagnostics}
}

// RunLinter returns a KindRunLinter action for uri.
func RunLinter(uri protocol.DocumentURI) Action {
	return Action{Kind: KindRunLinter, URI: uri}
}

// ParseLog returns a KindParseLog action tying a build log to its source.
func ParseLog(uri protocol.DocumentURI, logPath string) Action {
	return Action{Kind: KindParseLog, URI: uri, LogPath: logPath}
}

// Build returns a KindBuild action for uri.
func Build(uri protocol.DocumentURI) Action {
	return Action{Kind: KindBuild, URI: uri}
}

// ScanComponents returns a KindScanComponents action.
func ScanComponents() Action {
	return Action{Kind: KindScanComponents}
}
