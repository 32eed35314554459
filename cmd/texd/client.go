package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/dshills/texd/internal/protocol"
)

// stdioClient writes outbound notifications as newline-delimited JSON.
// The line framing has no request correlation, so configuration fetches
// are unsupported and the core falls back to defaults.
type stdioClient struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

func newStdioClient(w io.Writer) *stdioClient {
	return &stdioClient{w: w, enc: json.NewEncoder(w)}
}

type notification struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

func (c *stdioClient) send(method string, params any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(notification{Method: method, Params: params})
}

// PublishDiagnostics sends a textDocument/publishDiagnostics notification.
func (c *stdioClient) PublishDiagnostics(_ context.Context, uri protocol.DocumentURI, diagnostics []protocol.Diagnostic) error {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	return c.send("textDocument/publishDiagnostics", map[string]any{
		"uri":         uri,
		"diagnostics": diagnostics,
	})
}

// ShowMessage sends a window/showMessage notification.
func (c *stdioClient) ShowMessage(_ context.Context, typ protocol.MessageType, message string) error {
	return c.send("window/showMessage", map[string]any{
		"type":    typ,
		"message": message,
	})
}

// RegisterFileWatcher sends a client/registerCapability notification.
// The thin framing cannot await the client's answer; a client that does
// not honor it simply never sends watched-file events back.
func (c *stdioClient) RegisterFileWatcher(_ context.Context, reg protocol.FileWatcherRegistration) error {
	return c.send("client/registerCapability", map[string]any{
		"registrations": []any{map[string]any{
			"id":     reg.ID,
			"method": "workspace/didChangeWatchedFiles",
			"registerOptions": map[string]any{
				"watchers": []any{map[string]any{"globPattern": reg.GlobPattern}},
			},
		}},
	})
}

// Configuration is unsupported over the line framing.
func (c *stdioClient) Configuration(context.Context, string) (json.RawMessage, error) {
	return nil, errors.New("configuration requests not supported over line framing")
}
