// Package main is the entry point for the texd language-tooling daemon.
// It pumps newline-delimited JSON protocol events from stdin through the
// coordination core, one dispatch pass per handled event.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/texd/internal/config"
	"github.com/dshills/texd/internal/protocol"
	"github.com/dshills/texd/internal/server"
	"github.com/dshills/texd/internal/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// event is one inbound protocol message in the line-delimited framing.
type event struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type initializeParams struct {
	Capabilities struct {
		DynamicWatchRegistration bool `json:"dynamicWatchRegistration"`
		Configuration            bool `json:"configuration"`
	} `json:"capabilities"`
}

type documentParams struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId,omitempty"`
	Text       string `json:"text,omitempty"`
}

type watchedFilesParams struct {
	Changes []struct {
		URI string `json:"uri"`
	} `json:"changes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var logLevel string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("texd %s (%s)\n", version, commit)
		return 0
	}

	if configPath == "" {
		configPath = filepath.Join(config.DefaultDir(), "config.toml")
	}
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading settings: %v\n", err)
		return 1
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(settings.LogLevel),
	}))
	slog.SetDefault(logger)

	client := newStdioClient(os.Stdout)

	// Watched-log events enter the pump through their own channel so the
	// dispatch order stays single-threaded.
	logEvents := make(chan string, 64)
	watcher, err := watch.New(
		time.Duration(settings.WatchDebounceMS)*time.Millisecond,
		func(path string) {
			select {
			case logEvents <- path:
			default:
				logger.Warn("dropping log event, pump is backed up", "path", path)
			}
		},
		watch.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating watcher: %v\n", err)
		return 1
	}

	srv := server.New(client,
		server.WithLogger(logger),
		server.WithSettings(settings),
		server.WithLogWatcher(watcher),
	)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	lines, readErr := readLines(os.Stdin)

	ctx := context.Background()
	logger.Info("texd started", "version", version)

pump:
	for {
		select {
		case <-signals:
			logger.Info("signal received, shutting down")
			break pump
		case path := <-logEvents:
			srv.OnWatchedFileChanged(path)
			srv.Dispatch(ctx)
		case line, ok := <-lines:
			if !ok {
				// The channel closes only after every buffered line has
				// been delivered, so nothing queued at EOF is lost.
				if err := <-readErr; err != nil {
					logger.Error("reading stdin failed", "error", err)
				}
				break pump
			}
			if len(line) == 0 {
				continue
			}
			var ev event
			if err := json.Unmarshal(line, &ev); err != nil {
				logger.Warn("discarding malformed event", "error", err)
				continue
			}
			if ev.Method == "shutdown" || ev.Method == "exit" {
				break pump
			}
			handle(srv, ev, logger)
			srv.Dispatch(ctx)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
		return 1
	}
	logger.Info("texd stopped")
	return 0
}

// readLines feeds newline-delimited messages from r into a channel.
// The error channel receives the scan result before the line channel
// closes, and the line channel closes only after all lines are sent.
func readLines(r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte, 16)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			lines <- line
		}
		errc <- scanner.Err()
		close(lines)
	}()
	return lines, errc
}

// handle routes one inbound event to its protocol handler.
func handle(srv *server.Server, ev event, logger *slog.Logger) {
	switch ev.Method {
	case "initialize":
		var p initializeParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			logger.Warn("invalid initialize params", "error", err)
			return
		}
		srv.OnInitialize(protocol.ClientCapabilities{
			DynamicWatchRegistration: p.Capabilities.DynamicWatchRegistration,
			Configuration:            p.Capabilities.Configuration,
		})
	case "initialized":
		srv.OnInitialized()
	case "textDocument/didOpen":
		var p documentParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			logger.Warn("invalid didOpen params", "error", err)
			return
		}
		srv.OnOpen(protocol.DocumentURI(p.URI), p.LanguageID, p.Text)
	case "textDocument/didChange":
		var p documentParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			logger.Warn("invalid didChange params", "error", err)
			return
		}
		srv.OnChange(protocol.DocumentURI(p.URI), p.Text)
	case "textDocument/didSave":
		var p documentParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			logger.Warn("invalid didSave params", "error", err)
			return
		}
		srv.OnSave(protocol.DocumentURI(p.URI))
	case "textDocument/didClose":
		var p documentParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			return
		}
		srv.OnClose(protocol.DocumentURI(p.URI))
	case "workspace/didChangeWatchedFiles":
		var p watchedFilesParams
		if err := json.Unmarshal(ev.Params, &p); err != nil {
			logger.Warn("invalid didChangeWatchedFiles params", "error", err)
			return
		}
		for _, change := range p.Changes {
			uri := protocol.DocumentURI(change.URI)
			if uri.IsFile() {
				srv.OnWatchedFileChanged(protocol.URIToFilePath(uri))
			}
		}
	default:
		logger.Debug("ignoring event", "method", ev.Method)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
