package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fasmbook/internal/markdown"
)

func newRenderer(t *testing.T, root string) *Renderer {
	t.Helper()
	r, err := New(Options{BookRootAbs: root, Markdown: markdown.DefaultOptions()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRenderFile_TitleTOCAndSanitization(t *testing.T) {
	root := t.TempDir()
	body := "# Calling Conventions\n\n## cdecl\n\n<script>alert(1)</script>\n\n" +
		"```asm\npush ebp\nmov ebp, esp\n```\n\n" +
		"See [the manual](https://flatassembler.net) or [below](#cdecl).\n"
	if err := os.WriteFile(filepath.Join(root, "ch03.md"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := newRenderer(t, root)
	res, err := r.RenderFile("ch03.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}

	if res.Title != "Calling Conventions" {
		t.Fatalf("title = %q", res.Title)
	}
	if len(res.TOC) != 2 || res.TOC[1].ID != "cdecl" {
		t.Fatalf("toc = %+v", res.TOC)
	}
	if strings.Contains(res.HTML, "<script") {
		t.Fatalf("script survived sanitization: %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `id="calling-conventions"`) {
		t.Fatalf("heading id stripped by sanitizer: %q", res.HTML)
	}
	if !strings.Contains(res.HTML, "hl-instruction") {
		t.Fatalf("highlight spans stripped by sanitizer: %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `target="_blank"`) || !strings.Contains(res.HTML, "noopener") {
		t.Fatalf("external link policy lost: %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `href="#cdecl"`) {
		t.Fatalf("fragment link lost: %q", res.HTML)
	}
}

func TestRenderFile_CalloutSurvivesSanitizer(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.md"),
		[]byte("**Warning:** Interrupts are disabled here.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := newRenderer(t, root).RenderFile("a.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if !strings.Contains(res.HTML, `class="callout callout-warning"`) {
		t.Fatalf("callout class lost: %q", res.HTML)
	}
}

func TestRenderFile_CacheByMTime(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "a.md")
	if err := os.WriteFile(abs, []byte("# One\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := newRenderer(t, root)
	first, err := r.RenderFile("a.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	again, err := r.RenderFile("a.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if again.HTML != first.HTML || again.MTime != first.MTime {
		t.Fatalf("unchanged file should hit the cache")
	}

	if err := os.WriteFile(abs, []byte("# Two\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(abs, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	updated, err := r.RenderFile("a.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if updated.Title != "Two" {
		t.Fatalf("stale cache entry served after change: %+v", updated)
	}
}

func TestRenderFile_PathEscapeRejected(t *testing.T) {
	root := t.TempDir()
	r := newRenderer(t, root)
	if _, err := r.RenderFile("../outside.md"); err == nil {
		t.Fatalf("expected error for escaping path")
	}
}
