package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveBookPath_Escapes(t *testing.T) {
	root := t.TempDir()

	if _, _, err := ResolveBookPath(root, "../outside.md"); err == nil {
		t.Fatalf("expected error for path escaping root")
	}
	if _, _, err := ResolveBookPath(root, "a/../../outside.md"); err == nil {
		t.Fatalf("expected error for nested escape")
	}

	abs, rel, err := ResolveBookPath(root, "/ch/01.md")
	if err != nil {
		t.Fatalf("ResolveBookPath: %v", err)
	}
	if rel != "ch/01.md" {
		t.Fatalf("rel = %q", rel)
	}
	if abs != filepath.Join(root, "ch", "01.md") {
		t.Fatalf("abs = %q", abs)
	}
}

func TestResolveChapterRel(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ch"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "ch", "README.md"), []byte("# Ch"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "ch", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ResolveChapterRel(root, "ch")
	if err != nil {
		t.Fatalf("directory should resolve to README.md: %v", err)
	}
	if res.Rel != "ch/README.md" {
		t.Fatalf("rel = %q", res.Rel)
	}

	if _, err := ResolveChapterRel(root, "ch/notes.txt"); err == nil {
		t.Fatalf("non-markdown files must be rejected")
	}
	if _, err := ResolveChapterRel(root, "ch/missing.md"); err == nil {
		t.Fatalf("missing files must be rejected")
	}
}

func TestIsMarkdownFileName(t *testing.T) {
	for name, want := range map[string]bool{
		"a.md":       true,
		"A.MD":       true,
		"b.markdown": true,
		"c.txt":      false,
		"md":         false,
	} {
		if got := IsMarkdownFileName(name); got != want {
			t.Fatalf("IsMarkdownFileName(%q) = %v, want %v", name, got, want)
		}
	}
}
