package component

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/dshills/texd/internal/latex"
)

// Resolve maps a component file name to its path on disk.
// The resolver package's Resolve method satisfies this.
type Resolve func(name string) (string, bool)

// FileScanner is the built-in scan collaborator: it resolves a component
// to its source file and extracts the references, commands and
// environments it defines.
type FileScanner struct {
	resolve Resolve
}

// NewFileScanner creates a scanner over the given resolve function.
func NewFileScanner(resolve Resolve) *FileScanner {
	return &FileScanner{resolve: resolve}
}

var (
	commandRegex     = regexp.MustCompile(`\\(?:newcommand|DeclareRobustCommand|def)\*?\s*\{?\\([A-Za-z@]+)`)
	environmentRegex = regexp.MustCompile(`\\newenvironment\*?\s*\{([^}]+)\}`)
)

// Scan reads the component's source file and extracts its metadata.
// Unresolvable or unreadable components report false.
func (s *FileScanner) Scan(ctx context.Context, name string) (Component, bool) {
	path, ok := s.resolve(name)
	if !ok {
		return Component{}, false
	}
	if err := ctx.Err(); err != nil {
		return Component{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Component{}, false
	}
	text := string(data)

	c := Component{Name: name}
	c.References = latex.Scan(text).Components

	seen := make(map[string]bool)
	for _, m := range commandRegex.FindAllStringSubmatch(text, -1) {
		cmd := m[1]
		// Internal commands with @ are not user-facing.
		if strings.Contains(cmd, "@") || seen[cmd] {
			continue
		}
		seen[cmd] = true
		c.Commands = append(c.Commands, cmd)
	}
	for _, m := range environmentRegex.FindAllStringSubmatch(text, -1) {
		env := m[1]
		if seen["env:"+env] {
			continue
		}
		seen["env:"+env] = true
		c.Environments = append(c.Environments, env)
	}

	return c, true
}
