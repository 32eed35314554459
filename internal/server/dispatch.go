package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/texd/internal/action"
	"github.com/dshills/texd/internal/component"
	"github.com/dshills/texd/internal/config"
	"github.com/dshills/texd/internal/diagnostics"
	"github.com/dshills/texd/internal/protocol"
	"github.com/dshills/texd/internal/resolver"
	"github.com/dshills/texd/internal/workspace"
)

// Dispatch runs one dispatch pass: it atomically takes the queued actions
// and executes them sequentially in push order. Actions pushed while the
// pass runs wait for the next pass, so a single pass never re-executes
// its own follow-ups. The transport calls this after each handled message.
func (s *Server) Dispatch(ctx context.Context) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	for _, act := range s.queue.Take() {
		s.execute(ctx, act)
	}
}

// execute runs one action to completion. Failures degrade: they are
// logged or reported, and the remaining actions of the pass still run.
func (s *Server) execute(ctx context.Context, act action.Action) {
	s.logger.Debug("executing action", "action", act.Kind.String())

	switch act.Kind {
	case action.KindRegisterCapabilities:
		s.registerCapabilities(ctx)
	case action.KindLoadResolver:
		s.loadSharedResolver(ctx)
	case action.KindLoadComponentDatabase:
		s.loadComponentDatabase()
	case action.KindDetectRoot:
		s.detectRoot(act.URI)
	case action.KindDetectChildren:
		s.detectChildren()
	case action.KindPublishDiagnostics:
		s.publishDiagnostics(ctx)
	case action.KindRunLinter:
		s.runLinter(ctx, act.URI)
	case action.KindParseLog:
		s.parseLog(act.URI, act.LogPath)
	case action.KindBuild:
		s.runBuild(ctx, act.URI)
	case action.KindScanComponents:
		s.scanComponents()
	default:
		s.logger.Warn("unknown action kind", "kind", int(act.Kind))
	}
}

// registerCapabilities asks the client to watch build logs, or falls back
// to the local watcher when dynamic registration is unsupported.
func (s *Server) registerCapabilities(ctx context.Context) {
	if s.capabilities().DynamicWatchRegistration {
		reg := protocol.FileWatcherRegistration{
			ID:          "build-log-watcher-" + uuid.NewString(),
			GlobPattern: "**/*.log",
		}
		if err := s.client.RegisterFileWatcher(ctx, reg); err != nil {
			s.logger.Warn("client rejected file watcher registration", "error", err)
		}
		return
	}

	if s.logWatcher == nil {
		return
	}
	s.refreshLogWatches()
}

// refreshLogWatches points the local watcher at the directory of every
// known document. Re-adding a watched directory is a no-op.
func (s *Server) refreshLogWatches() {
	if s.logWatcher == nil {
		return
	}
	for _, doc := range s.store.Snapshot().Documents() {
		if doc.Path == "" {
			continue
		}
		if err := s.logWatcher.Watch(filepath.Dir(doc.Path)); err != nil {
			s.logger.Debug("watching directory failed", "dir", filepath.Dir(doc.Path), "error", err)
		}
	}
}

// loadSharedResolver performs the one-time resolver load. Failure leaves
// the empty resolver in place and tells the user why.
func (s *Server) loadSharedResolver(ctx context.Context) {
	err := s.resolver.Load(ctx, s.loadResolver)
	if err == nil {
		s.logger.Info("resolver loaded", "files", s.resolver.Get().Len())
		return
	}

	s.logger.Warn("loading resolver failed", "error", err)
	if msgErr := s.client.ShowMessage(ctx, protocol.MessageError, resolver.UserMessage(err)); msgErr != nil {
		s.logger.Warn("showing resolver failure message failed", "error", msgErr)
	}
}

// loadComponentDatabase bootstraps the component cache and its worker.
// Running it twice in one session is a contract violation; the second
// call is refused and logged rather than spawning a duplicate worker.
func (s *Server) loadComponentDatabase() {
	s.componentsMu.Lock()
	defer s.componentsMu.Unlock()

	if s.components != nil {
		s.logger.Error("component database already loaded, ignoring duplicate bootstrap")
		return
	}

	mgr := component.LoadOrCreate(
		s.settings.ComponentDatabasePath,
		s.scanner,
		component.WithManagerLogger(s.logger),
	)
	if err := mgr.Start(); err != nil {
		s.logger.Error("starting component database worker failed", "error", err)
		return
	}
	s.components = mgr
}

// detectRoot walks the ancestor directories of uri looking for a document
// that includes it, loading candidate source files along the way. Each
// directory is visited at most once per invocation, so cyclic symlinks
// cannot make the walk loop.
func (s *Server) detectRoot(uri protocol.DocumentURI) {
	if !uri.IsFile() {
		return
	}
	path := filepath.Clean(protocol.URIToFilePath(uri))
	visited := make(map[string]bool)

	for dir := filepath.Dir(path); ; {
		key := dir
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			key = resolved
		}
		if visited[key] {
			break
		}
		visited[key] = true

		if s.store.Snapshot().FindParent(uri) != nil {
			break
		}

		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				candidate := filepath.Join(dir, entry.Name())
				if _, ok := workspace.LanguageByExtension(candidate); !ok {
					continue
				}
				if s.store.Snapshot().FindByPath(candidate) != nil {
					continue
				}
				if _, err := s.store.Load(candidate); err != nil {
					s.logger.Debug("loading sibling failed", "path", candidate, "error", err)
				}
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	s.refreshLogWatches()
}

// detectChildren loads unresolved include targets from disk, repeating
// until no load makes progress so multi-level include chains resolve in
// one pass. The loop terminates because the workspace only grows and a
// target that fails to load never counts as progress.
func (s *Server) detectChildren() {
	for {
		progress := false
		for _, path := range s.store.Snapshot().UnresolvedIncludes() {
			if _, err := s.store.Load(path); err != nil {
				// Missing files stay unresolved until a later event.
				s.logger.Debug("child not loadable", "path", path, "error", err)
				continue
			}
			progress = true
		}
		if !progress {
			break
		}
	}

	s.refreshLogWatches()
}

// publishDiagnostics hands the merged diagnostics of every document to
// the publication collaborator.
func (s *Server) publishDiagnostics(ctx context.Context) {
	for _, doc := range s.store.Snapshot().Documents() {
		if err := s.client.PublishDiagnostics(ctx, doc.URI, s.diags.Get(doc.URI)); err != nil {
			s.logger.Warn("publishing diagnostics failed", "uri", string(doc.URI), "error", err)
		}
	}
}

// runLinter lints the document if on-save linting is enabled. A failed
// lint invocation clears the lint diagnostics for the document.
func (s *Server) runLinter(ctx context.Context, uri protocol.DocumentURI) {
	opts := config.Fetch[config.LintOptions](ctx, s.configFetcher(), "latex.lint", s.logger)
	if !opts.Enabled() {
		return
	}
	if !uri.IsFile() {
		return
	}

	diags, err := s.linter.Lint(ctx, protocol.URIToFilePath(uri))
	if err != nil {
		s.logger.Debug("lint failed", "uri", string(uri), "error", err)
		diags = nil
	}
	s.diags.UpdateLint(uri, diags)
}

// parseLog reads a build log and replaces the build diagnostics for the
// source document. A missing log is a silent no-op.
func (s *Server) parseLog(uri protocol.DocumentURI, logPath string) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return
	}
	s.diags.UpdateBuild(uri, diagnostics.ParseBuildLog(string(data)))
}

// runBuild builds the document's root if on-save building is enabled.
func (s *Server) runBuild(ctx context.Context, uri protocol.DocumentURI) {
	opts := config.Fetch[config.BuildOptions](ctx, s.configFetcher(), "latex.build", s.logger)
	if !opts.Enabled() {
		return
	}

	snap := s.store.Snapshot()
	doc := snap.Find(uri)
	if doc == nil || doc.Path == "" {
		return
	}
	target := doc
	if parent := snap.FindParent(uri); parent != nil && parent.Path != "" {
		target = parent
	}

	result, err := s.builder.Build(ctx, target.Path, opts)
	if err != nil {
		s.logger.Warn("build invocation failed", "path", target.Path, "error", err)
		return
	}
	s.logger.Info("build finished", "path", target.Path, "success", result.Success, "log", result.LogPath)
}

// scanComponents feeds every referenced component to the scan worker.
func (s *Server) scanComponents() {
	s.componentsMu.Lock()
	mgr := s.components
	s.componentsMu.Unlock()
	if mgr == nil {
		return
	}

	for _, doc := range s.store.Snapshot().Documents() {
		for _, name := range doc.Components {
			mgr.Enqueue(name)
		}
	}
}

// configFetcher returns the client as configuration source when the
// client declared workspace/configuration support, else nil so lookups
// fall back to defaults.
func (s *Server) configFetcher() config.Fetcher {
	if !s.capabilities().Configuration {
		return nil
	}
	return s.client
}
