// Package latex provides a lightweight scanner for the inclusion and
// component directives the coordination core needs from a document. It is
// the built-in stand-in for a full syntax collaborator: it only extracts
// the directive arguments, never a syntax tree.
package latex

import (
	"regexp"
	"strings"
)

// ScanResult holds the directives extracted from one document.
type ScanResult struct {
	// Includes are the raw arguments of file-inclusion directives,
	// in document order. Paths are not resolved here.
	Includes []Include

	// Components are the package and class names the document references,
	// normalized to their component file names (e.g. "amsmath.sty").
	Components []string
}

// IncludeKind distinguishes inclusion directives by the file type they pull in.
type IncludeKind int

const (
	// IncludeTex covers \include, \input and \subfile arguments.
	IncludeTex IncludeKind = iota
	// IncludeBib covers \bibliography and \addbibresource arguments.
	IncludeBib
)

// Include is one file-inclusion directive argument.
type Include struct {
	Kind IncludeKind
	// Target is the raw argument, possibly without an extension.
	Target string
}

// Scanner adapts Scan to the workspace's Parser interface.
type Scanner struct{}

// Parse extracts directives from document text.
func (Scanner) Parse(text string) ScanResult {
	return Scan(text)
}

var directiveRegex = regexp.MustCompile(
	`\\(include|input|subfile|bibliography|addbibresource|usepackage|RequirePackage|documentclass)\s*(?:\[[^\]]*\])?\{([^}]*)\}`)

// Scan extracts inclusion and component directives from document text.
// Comment lines (starting with %) are skipped; inline comments are not,
// which matches how coarse the original scanner was.
func Scan(text string) ScanResult {
	var result ScanResult
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%") {
			continue
		}

		for _, m := range directiveRegex.FindAllStringSubmatch(line, -1) {
			name, arg := m[1], strings.TrimSpace(m[2])
			if arg == "" {
				continue
			}

			switch name {
			case "include", "input", "subfile":
				result.Includes = append(result.Includes, Include{Kind: IncludeTex, Target: arg})
			case "bibliography", "addbibresource":
				// \bibliography accepts a comma-separated list.
				for _, part := range strings.Split(arg, ",") {
					part = strings.TrimSpace(part)
					if part != "" {
						result.Includes = append(result.Includes, Include{Kind: IncludeBib, Target: part})
					}
				}
			case "usepackage", "RequirePackage":
				for _, part := range strings.Split(arg, ",") {
					part = strings.TrimSpace(part)
					if part == "" {
						continue
					}
					component := part + ".sty"
					if !seen[component] {
						seen[component] = true
						result.Components = append(result.Components, component)
					}
				}
			case "documentclass":
				component := arg + ".cls"
				if !seen[component] {
					seen[component] = true
					result.Components = append(result.Components, component)
				}
			}
		}
	}

	return result
}
