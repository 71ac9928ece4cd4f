package search

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestFallback_SmartCase(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "The MOV instruction copies data.\n")
	writeFile(t, root, "sub/b.md", "mov eax, 1\n")
	writeFile(t, root, "c.txt", "mov should not match here\n")

	// Lowercase query matches case-insensitively, both files.
	resp, err := Fallback(root, "mov", 0)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", resp.Results)
	}

	// Uppercase in the query switches to case-sensitive.
	resp, err = Fallback(root, "MOV", 0)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "a.md" {
		t.Fatalf("expected only a.md, got %+v", resp.Results)
	}
	if resp.Results[0].Line != 1 {
		t.Fatalf("line = %d", resp.Results[0].Line)
	}
}

func TestFallback_EmptyQuery(t *testing.T) {
	resp, err := Fallback(t.TempDir(), "   ", 0)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if len(resp.Results) != 0 || resp.Truncated {
		t.Fatalf("expected empty response, got %+v", resp)
	}
}

func TestFallback_Limit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "x\nx\nx\nx\n")

	resp, err := Fallback(root, "x", 2)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if len(resp.Results) != 2 || !resp.Truncated {
		t.Fatalf("expected truncated pair, got %+v", resp)
	}
}
