package search

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestRipgrep_FindsMatches(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("the stack grows down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp, err := Ripgrep(root, "stack", 10)
	if err != nil {
		t.Fatalf("Ripgrep: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Path != "a.md" {
		t.Fatalf("results = %+v", resp.Results)
	}
}

func TestRipgrep_NoMatchesIsNotAnError(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	resp, err := Ripgrep(t.TempDir(), "nomatchforthis", 10)
	if err != nil {
		t.Fatalf("Ripgrep: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("results = %+v", resp.Results)
	}
}

func TestChapters_FallsBackWithoutRipgrep(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("registers hold words\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp, err := Chapters(root, "registers", 10)
	if err != nil {
		t.Fatalf("Chapters: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %+v", resp.Results)
	}
}
