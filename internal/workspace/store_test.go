package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/texd/internal/latex"
	"github.com/dshills/texd/internal/protocol"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(latex.Scanner{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestStoreAdd_VersionIncrements(t *testing.T) {
	store := newTestStore(t)
	uri := protocol.DocumentURI("file:///tmp/main.tex")

	store.Add(uri, "\\documentclass{article}", LanguageLatex)
	if got := store.Snapshot().Find(uri).Version; got != 1 {
		t.Errorf("first Version = %d, want 1", got)
	}

	store.Add(uri, "\\documentclass{book}", LanguageLatex)
	if got := store.Snapshot().Find(uri).Version; got != 2 {
		t.Errorf("second Version = %d, want 2", got)
	}
	if store.Snapshot().Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Snapshot().Count())
	}
}

func TestStoreAdd_ReturnsPreviousDocument(t *testing.T) {
	store := newTestStore(t)
	uri := protocol.DocumentURI("file:///tmp/main.tex")

	if prev := store.Add(uri, "first", LanguageLatex); prev != nil {
		t.Errorf("first Add returned %v, want nil", prev)
	}

	prev := store.Add(uri, "second", LanguageLatex)
	if prev == nil {
		t.Fatal("second Add returned nil, want the replaced document")
	}
	if prev.Text != "first" || prev.Version != 1 {
		t.Errorf("previous = {Text: %q, Version: %d}, want the v1 document", prev.Text, prev.Version)
	}
}

func TestStoreUpdate_UnknownDocument(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("file:///tmp/missing.tex", "text")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Update error = %v, want ErrDocumentNotFound", err)
	}
}

func TestStoreUpdate_ReparsesIncludes(t *testing.T) {
	store := newTestStore(t)
	uri := protocol.DocumentURI("file:///tmp/main.tex")

	store.Add(uri, "", LanguageLatex)
	doc, err := store.Update(uri, "\\include{chapter}")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(doc.Includes) != 1 {
		t.Fatalf("Includes = %d, want 1", len(doc.Includes))
	}
	if doc.Includes[0].Raw != "chapter" {
		t.Errorf("Raw = %q, want %q", doc.Includes[0].Raw, "chapter")
	}
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.tex")
	writeFile(t, path, "\\usepackage{amsmath}")

	store := newTestStore(t)

	doc, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Language != LanguageLatex {
		t.Errorf("Language = %v, want LanguageLatex", doc.Language)
	}
	if len(doc.Components) != 1 || doc.Components[0] != "amsmath.sty" {
		t.Errorf("Components = %v, want [amsmath.sty]", doc.Components)
	}
	if doc.ModTime.IsZero() {
		t.Error("ModTime is zero for a disk-loaded document")
	}

	// Loading a known path again returns the existing document untouched.
	again, err := store.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again != doc {
		t.Error("second Load returned a new document")
	}
	if store.Snapshot().Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Snapshot().Count())
	}
}

func TestStoreLoad_UnsupportedExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(filepath.Join(t.TempDir(), "notes.txt"))
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Load error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestStoreLoad_MissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(filepath.Join(t.TempDir(), "missing.tex"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestStoreSnapshot_CopyOnWrite(t *testing.T) {
	store := newTestStore(t)
	before := store.Snapshot()

	store.Add("file:///tmp/a.tex", "", LanguageLatex)

	if before.Count() != 0 {
		t.Errorf("old snapshot Count = %d, want 0", before.Count())
	}
	if store.Snapshot().Count() != 1 {
		t.Errorf("new snapshot Count = %d, want 1", store.Snapshot().Count())
	}
}

func TestStore_IncludeResolutionLifecycle(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.tex")
	chapterPath := filepath.Join(dir, "chapter.tex")

	store := newTestStore(t)
	mainURI := protocol.FilePathToURI(mainPath)
	store.Add(mainURI, "\\include{chapter}", LanguageLatex)

	unresolved := store.Snapshot().UnresolvedIncludes()
	if len(unresolved) != 1 || unresolved[0] != chapterPath {
		t.Fatalf("UnresolvedIncludes = %v, want [%s]", unresolved, chapterPath)
	}

	writeFile(t, chapterPath, "Hello")
	if _, err := store.Load(chapterPath); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := store.Snapshot().UnresolvedIncludes(); len(got) != 0 {
		t.Errorf("UnresolvedIncludes after load = %v, want empty", got)
	}

	chapterURI := protocol.FilePathToURI(chapterPath)
	parent := store.Snapshot().FindParent(chapterURI)
	if parent == nil || parent.URI != mainURI {
		t.Errorf("FindParent = %v, want %s", parent, mainURI)
	}
}
