package diagnostics

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/texd/internal/protocol"
)

// Linter is the lint collaborator. A failed invocation means "no
// diagnostics this cycle", never an aborted dispatch.
type Linter interface {
	Lint(ctx context.Context, path string) ([]protocol.Diagnostic, error)
}

// ChkTeX lints LaTeX sources by invoking the chktex tool.
type ChkTeX struct {
	// Executable overrides the binary name, mainly for tests.
	Executable string
}

// lintLineRegex matches the machine-readable chktex output format
// requested below: line:column:length:kind:code:message.
var lintLineRegex = regexp.MustCompile(`^(\d+):(\d+):(\d+):(\w+):(\w+):(.*)$`)

// Lint runs chktex over the file and parses its report.
func (l *ChkTeX) Lint(ctx context.Context, path string) ([]protocol.Diagnostic, error) {
	executable := l.Executable
	if executable == "" {
		executable = "chktex"
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}
	defer file.Close()

	cmd := exec.CommandContext(ctx, executable, "-I0", `-f%l:%c:%d:%k:%n:%m`+"\n")
	cmd.Stdin = file
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}

	return ParseChkTeXOutput(string(out)), nil
}

// ParseChkTeXOutput converts chktex report lines into diagnostics.
// Lines that do not match the expected format are skipped.
func ParseChkTeXOutput(output string) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, line := range strings.Split(output, "\n") {
		m := lintLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lineNum, _ := strconv.Atoi(m[1])
		column, _ := strconv.Atoi(m[2])
		length, _ := strconv.Atoi(m[3])
		kind := m[4]
		code := m[5]
		message := m[6]

		var severity protocol.DiagnosticSeverity
		switch kind {
		case "Message":
			severity = protocol.SeverityInformation
		case "Warning":
			severity = protocol.SeverityWarning
		default:
			severity = protocol.SeverityError
		}

		// chktex reports 1-based positions.
		start := protocol.Position{Line: lineNum - 1, Character: column - 1}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: start,
				End:   protocol.Position{Line: start.Line, Character: start.Character + length},
			},
			Severity: severity,
			Code:     code,
			Source:   "chktex",
			Message:  message,
		})
	}

	return diagnostics
}
