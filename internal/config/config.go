// Package config provides the two configuration surfaces of the server:
// client-side settings fetched per section over the protocol, and the
// server's own TOML settings file. Both fall back to documented defaults
// when unavailable or malformed.
package config

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Fetcher retrieves the raw configuration JSON for a section from the
// client. The protocol client satisfies this.
type Fetcher interface {
	Configuration(ctx context.Context, section string) (json.RawMessage, error)
}

// LintOptions configures on-save linting (section "latex.lint").
type LintOptions struct {
	OnSave *bool `json:"onSave"`
}

// Enabled reports whether on-save linting is turned on. Default false.
func (o LintOptions) Enabled() bool {
	return o.OnSave != nil && *o.OnSave
}

// BuildOptions configures on-save building (section "latex.build").
type BuildOptions struct {
	OnSave     *bool    `json:"onSave"`
	Executable string   `json:"executable"`
	Args       []string `json:"args"`
}

// Enabled reports whether on-save building is turned on. Default false.
func (o BuildOptions) Enabled() bool {
	return o.OnSave != nil && *o.OnSave
}

// Command returns the build executable and arguments with defaults applied.
func (o BuildOptions) Command() (string, []string) {
	executable := o.Executable
	if executable == "" {
		executable = "latexmk"
	}
	args := o.Args
	if args == nil {
		args = []string{"-pdf", "-interaction=nonstopmode", "-synctex=1"}
	}
	return executable, args
}

// Fetch retrieves and decodes one configuration section. A fetch error or
// malformed JSON yields the zero value and a warning, never an error:
// configuration can only degrade behavior, not break a dispatch pass.
func Fetch[T any](ctx context.Context, fetcher Fetcher, section string, logger *slog.Logger) T {
	var value T
	if fetcher == nil {
		return value
	}

	raw, err := fetcher.Configuration(ctx, section)
	if err != nil {
		logger.Warn("retrieving configuration failed", "section", section, "error", err)
		return value
	}
	if len(raw) == 0 {
		return value
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		var zero T
		logger.Warn("invalid configuration", "section", section, "error", err)
		return zero
	}
	return value
}
