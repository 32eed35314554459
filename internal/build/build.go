// Package build invokes the external build tool for a document.
// The coordination core only cares whether the build ran and where its
// log landed; log contents flow back through the ParseLog action.
package build

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/texd/internal/config"
)

// Result is the outcome of one build invocation.
type Result struct {
	// Success is false when the tool exited non-zero.
	Success bool

	// LogPath is where the build log is expected after the run.
	LogPath string
}

// Builder is the build collaborator.
type Builder interface {
	Build(ctx context.Context, path string, options config.BuildOptions) (Result, error)
}

// Latexmk builds documents by running latexmk (or a configured substitute)
// in the document's directory.
type Latexmk struct{}

// Build runs the configured build command for the document at path.
// A non-zero exit is a failed build, not an error; errors mean the tool
// could not be invoked at all.
func (Latexmk) Build(ctx context.Context, path string, options config.BuildOptions) (Result, error) {
	executable, args := options.Command()
	logPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".log"

	cmd := exec.CommandContext(ctx, executable, append(args, filepath.Base(path))...)
	cmd.Dir = filepath.Dir(path)

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{Success: false, LogPath: logPath}, nil
		}
		return Result{}, fmt.Errorf("build %s: %w", path, err)
	}

	return Result{Success: true, LogPath: logPath}, nil
}
