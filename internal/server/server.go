// Package server is the coordination core of the language server. Protocol
// handlers mutate the workspace and enqueue deferred actions; one dispatch
// pass after each handled message drains and executes them in order.
package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/texd/internal/action"
	"github.com/dshills/texd/internal/build"
	"github.com/dshills/texd/internal/component"
	"github.com/dshills/texd/internal/config"
	"github.com/dshills/texd/internal/diagnostics"
	"github.com/dshills/texd/internal/latex"
	"github.com/dshills/texd/internal/protocol"
	"github.com/dshills/texd/internal/resolver"
	"github.com/dshills/texd/internal/watch"
	"github.com/dshills/texd/internal/workspace"
)

// Server owns the workspace store, the action queue and the lifecycle of
// the shared resolver and component database.
type Server struct {
	logger   *slog.Logger
	client   protocol.Client
	settings config.Settings

	store    *workspace.Store
	queue    *action.Queue
	diags    *diagnostics.Cache
	resolver *resolver.Holder

	linter       diagnostics.Linter
	builder      build.Builder
	loadResolver resolver.Loader
	scanner      component.Scanner

	capsMu sync.RWMutex
	caps   protocol.ClientCapabilities

	componentsMu sync.Mutex
	components   *component.Manager

	logWatcher *watch.LogWatcher

	// dispatchMu enforces the single-dispatch-loop contract.
	dispatchMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSettings sets the server-side settings.
func WithSettings(settings config.Settings) Option {
	return func(s *Server) {
		s.settings = settings
	}
}

// WithParser sets the parsing collaborator for the workspace store.
func WithParser(parser workspace.Parser) Option {
	return func(s *Server) {
		s.store = workspace.NewStore(parser)
	}
}

// WithLinter sets the lint collaborator.
func WithLinter(linter diagnostics.Linter) Option {
	return func(s *Server) {
		s.linter = linter
	}
}

// WithBuilder sets the build collaborator.
func WithBuilder(builder build.Builder) Option {
	return func(s *Server) {
		s.builder = builder
	}
}

// WithResolverLoader sets how the path resolver is built.
func WithResolverLoader(loader resolver.Loader) Option {
	return func(s *Server) {
		s.loadResolver = loader
	}
}

// WithComponentScanner sets the component-scan collaborator.
func WithComponentScanner(scanner component.Scanner) Option {
	return func(s *Server) {
		s.scanner = scanner
	}
}

// WithLogWatcher provides the local fallback watcher used when the client
// lacks dynamic watch registration. The caller owns event delivery; the
// server only decides which directories to watch.
func WithLogWatcher(w *watch.LogWatcher) Option {
	return func(s *Server) {
		s.logWatcher = w
	}
}

// New creates a server talking to the given client collaborator.
func New(client protocol.Client, opts ...Option) *Server {
	s := &Server{
		logger:       slog.Default(),
		client:       client,
		settings:     config.DefaultSettings(),
		queue:        action.NewQueue(),
		diags:        diagnostics.NewCache(),
		resolver:     resolver.NewHolder(),
		linter:       &diagnostics.ChkTeX{},
		builder:      build.Latexmk{},
		loadResolver: resolver.Load,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = workspace.NewStore(latex.Scanner{}, workspace.WithLogger(s.logger))
	}
	if s.scanner == nil {
		// The scanner re-reads the holder on each call so it follows the
		// resolver swap once loading finishes.
		s.scanner = component.NewFileScanner(func(name string) (string, bool) {
			return s.resolver.Get().Resolve(name)
		})
	}
	return s
}

// Workspace returns the workspace store.
func (s *Server) Workspace() *workspace.Store {
	return s.store
}

// Diagnostics returns the diagnostics cache.
func (s *Server) Diagnostics() *diagnostics.Cache {
	return s.diags
}

// Resolver returns the shared resolver holder.
func (s *Server) Resolver() *resolver.Holder {
	return s.resolver
}

// Components returns the component database manager, or nil before
// LoadComponentDatabase has run.
func (s *Server) Components() *component.Manager {
	s.componentsMu.Lock()
	defer s.componentsMu.Unlock()
	return s.components
}

// OnInitialize records the client capabilities the core cares about.
func (s *Server) OnInitialize(caps protocol.ClientCapabilities) {
	s.capsMu.Lock()
	s.caps = caps
	s.capsMu.Unlock()
}

func (s *Server) capabilities() protocol.ClientCapabilities {
	s.capsMu.RLock()
	defer s.capsMu.RUnlock()
	return s.caps
}

// OnInitialized queues the session bootstrap actions.
func (s *Server) OnInitialized() {
	s.queue.PushAll(
		action.RegisterCapabilities(),
		action.LoadResolver(),
		action.LoadComponentDatabase(),
		action.ScanComponents(),
		action.DetectChildren(),
		action.PublishDiagnostics(),
	)
}

// OnOpen registers a newly opened document and queues root discovery.
func (s *Server) OnOpen(uri protocol.DocumentURI, languageID, text string) {
	language := languageFromID(languageID, uri)
	s.store.Add(uri, text, language)
	s.queue.PushAll(
		action.DetectRoot(uri),
		action.DetectChildren(),
		action.ScanComponents(),
		action.PublishDiagnostics(),
	)
}

// OnChange replaces the text of an open document.
func (s *Server) OnChange(uri protocol.DocumentURI, text string) {
	if _, err := s.store.Update(uri, text); err != nil {
		s.logger.Warn("change for unknown document", "uri", string(uri), "error", err)
		return
	}
	s.queue.PushAll(
		action.DetectChildren(),
		action.ScanComponents(),
		action.PublishDiagnostics(),
	)
}

// OnSave queues the on-save lint, publish and build cycle.
func (s *Server) OnSave(uri protocol.DocumentURI) {
	s.queue.PushAll(
		action.RunLinter(uri),
		action.PublishDiagnostics(),
		action.Build(uri),
	)
}

// OnClose is a no-op; closed documents stay in the workspace so the
// project graph survives editor tab churn.
func (s *Server) OnClose(protocol.DocumentURI) {}

// OnWatchedFileChanged maps a changed build log back to its source
// document and queues log parsing.
func (s *Server) OnWatchedFileChanged(path string) {
	if strings.HasSuffix(path, ".log") {
		texPath := strings.TrimSuffix(path, ".log") + ".tex"
		if doc := s.store.Snapshot().FindByPath(filepath.Clean(texPath)); doc != nil {
			s.queue.Push(action.ParseLog(doc.URI, path))
		}
	}
	s.queue.Push(action.PublishDiagnostics())
}

// Shutdown closes the local watcher and the component database worker and
// joins them. Queued scans are persisted or dropped before this returns.
func (s *Server) Shutdown(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.logWatcher != nil {
		g.Go(s.logWatcher.Close)
	}

	s.componentsMu.Lock()
	mgr := s.components
	s.componentsMu.Unlock()
	if mgr != nil {
		mgr.Close()
		g.Go(func() error { return mgr.Join(ctx) })
	}

	return g.Wait()
}

// languageFromID maps the protocol language identifier, falling back to
// the file extension, then to LaTeX.
func languageFromID(languageID string, uri protocol.DocumentURI) workspace.Language {
	switch languageID {
	case "latex", "tex":
		return workspace.LanguageLatex
	case "bibtex", "bib":
		return workspace.LanguageBibtex
	}
	if lang, ok := workspace.LanguageByExtension(protocol.URIToFilePath(uri)); ok {
		return lang
	}
	return workspace.LanguageLatex
}
