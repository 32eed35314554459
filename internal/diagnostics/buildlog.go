package diagnostics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/texd/internal/protocol"
)

var (
	errorLineRegex   = regexp.MustCompile(`^l\.(\d+)`)
	warningRegex     = regexp.MustCompile(`^(?:LaTeX|Package(?: \w+)?) Warning: (.*?)(?: on input line (\d+)\.)?$`)
	badBoxRegex      = regexp.MustCompile(`^(Overfull|Underfull) \\[hv]box .* at lines? (\d+)`)
	trailingDotRegex = regexp.MustCompile(`\.$`)
)

// ParseBuildLog extracts errors, warnings and bad boxes from a LaTeX
// build log. Positions are zero-based; messages the log does not tie to
// a line land on line zero.
func ParseBuildLog(log string) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	lines := strings.Split(log, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case strings.HasPrefix(line, "! "):
			message := strings.TrimPrefix(line, "! ")
			lineNum := 0
			// TeX prints the offending line as "l.<num> ..." shortly after.
			for j := i + 1; j < len(lines) && j <= i+8; j++ {
				if m := errorLineRegex.FindStringSubmatch(lines[j]); m != nil {
					n, _ := strconv.Atoi(m[1])
					lineNum = n - 1
					break
				}
			}
			diagnostics = append(diagnostics, buildDiagnostic(message, lineNum, protocol.SeverityError))

		case badBoxRegex.MatchString(line):
			m := badBoxRegex.FindStringSubmatch(line)
			n, _ := strconv.Atoi(m[2])
			diagnostics = append(diagnostics, buildDiagnostic(line, n-1, protocol.SeverityWarning))

		case warningRegex.MatchString(line):
			m := warningRegex.FindStringSubmatch(line)
			message := trailingDotRegex.ReplaceAllString(m[1], "")
			lineNum := 0
			if m[2] != "" {
				n, _ := strconv.Atoi(m[2])
				lineNum = n - 1
			}
			diagnostics = append(diagnostics, buildDiagnostic(message, lineNum, protocol.SeverityWarning))
		}
	}

	return diagnostics
}

func buildDiagnostic(message string, line int, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	if line < 0 {
		line = 0
	}
	pos := protocol.Position{Line: line}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: pos, End: pos},
		Severity: severity,
		Source:   "latex-build",
		Message:  message,
	}
}
