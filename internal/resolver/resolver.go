// Package resolver builds and shares the read-only index mapping component
// file names to filesystem paths. The index comes from the TeX distribution's
// ls-R file databases, located by invoking kpsewhich once per session.
package resolver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Resolver maps component file names to absolute filesystem paths.
// It is immutable once built; replace it wholesale, never mutate it.
type Resolver struct {
	files map[string]string
}

// Empty returns a resolver that resolves nothing. Used while the real
// resolver loads, and as the degraded fallback when loading fails.
func Empty() *Resolver {
	return &Resolver{files: make(map[string]string)}
}

// Resolve returns the path for a component file name.
func (r *Resolver) Resolve(name string) (string, bool) {
	path, ok := r.files[name]
	return path, ok
}

// Len returns the number of indexed files.
func (r *Resolver) Len() int {
	return len(r.files)
}

// Loader builds a resolver. The production loader invokes kpsewhich;
// tests substitute their own.
type Loader func(ctx context.Context) (*Resolver, error)

// Load locates the TEXMF roots via kpsewhich and indexes their ls-R
// file databases.
func Load(ctx context.Context) (*Resolver, error) {
	kpsewhich, err := exec.LookPath("kpsewhich")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKpsewhichNotFound, err)
	}

	var roots []string
	for _, variable := range []string{"TEXMFDIST", "TEXMFHOME", "TEXMFLOCAL"} {
		out, err := exec.CommandContext(ctx, kpsewhich, "--var-value", variable).Output()
		if err != nil {
			continue
		}
		root := strings.TrimSpace(string(out))
		if root != "" {
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: kpsewhich reported no TEXMF roots", ErrKpsewhichNotFound)
	}

	files := make(map[string]string)
	found := false
	for _, root := range roots {
		data, err := os.ReadFile(filepath.Join(root, "ls-R"))
		if err != nil {
			continue
		}
		found = true
		if err := parseDatabase(root, data, files); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, ErrUnsupportedDistribution
	}

	return &Resolver{files: files}, nil
}

// parseDatabase indexes one ls-R database into files. The format is a
// header line followed by "directory:" sections listing plain file names.
func parseDatabase(root string, data []byte, files map[string]string) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "% ls-R") {
		return fmt.Errorf("%s: %w", filepath.Join(root, "ls-R"), ErrCorruptDatabase)
	}

	dir := root
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "%"):
			continue
		case strings.HasSuffix(line, ":"):
			rel := strings.TrimSuffix(line, ":")
			rel = strings.TrimPrefix(rel, "./")
			dir = filepath.Join(root, rel)
		default:
			// First occurrence wins, matching kpathsea lookup order.
			if _, ok := files[line]; !ok {
				files[line] = filepath.Join(dir, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Join(root, "ls-R"), ErrCorruptDatabase)
	}

	return nil
}
