package book

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

func TestLoadConfig_MissingFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Title != filepath.Base(root) {
		t.Fatalf("expected directory-name title, got %q", cfg.Title)
	}

	opts := cfg.Render.MarkdownOptions()
	if !opts.Highlight || !opts.Tables {
		t.Fatalf("expected highlighting and tables on by default: %+v", opts)
	}
}

func TestLoadConfig_File(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "book.yml", `
title: FASM from Scratch
author: anon
chapters:
  - path: intro.md
    title: Introduction
  - path: ch01/README.md
render:
  highlight: false
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Title != "FASM from Scratch" {
		t.Fatalf("title = %q", cfg.Title)
	}
	if len(cfg.Chapters) != 2 || cfg.Chapters[0].Title != "Introduction" {
		t.Fatalf("chapters = %+v", cfg.Chapters)
	}

	opts := cfg.Render.MarkdownOptions()
	if opts.Highlight {
		t.Fatalf("highlight should be disabled by config")
	}
	if !opts.Tables {
		t.Fatalf("tables should stay enabled when unset")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "book.yml", "title: [unclosed\n")
	if _, err := LoadConfig(root); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestListChapters_ScanFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "02-loops.md", "# Loops\n")
	writeFile(t, root, "01-intro.md", "# Introduction\n")
	writeFile(t, root, "notes.txt", "not a chapter\n")

	cfg, _ := LoadConfig(root)
	chs, err := ListChapters(root, cfg)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %+v", chs)
	}
	if chs[0].Path != "01-intro.md" || chs[1].Path != "02-loops.md" {
		t.Fatalf("wrong order: %+v", chs)
	}
	if chs[0].Title != "Introduction" {
		t.Fatalf("expected title from first heading, got %q", chs[0].Title)
	}
}

func TestListChapters_ExplicitOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Alpha\n")
	writeFile(t, root, "z.md", "# Omega\n")
	writeFile(t, root, "book.yml", "chapters:\n  - path: z.md\n  - path: a.md\n    title: Custom\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	chs, err := ListChapters(root, cfg)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if chs[0].Path != "z.md" || chs[0].Title != "Omega" {
		t.Fatalf("chapter 0 = %+v", chs[0])
	}
	if chs[1].Title != "Custom" {
		t.Fatalf("explicit title lost: %+v", chs[1])
	}
}

func TestListChapters_TitleFallsBackToFileName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "appendix.md", "no heading here\n")

	cfg, _ := LoadConfig(root)
	chs, err := ListChapters(root, cfg)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if chs[0].Title != "appendix" {
		t.Fatalf("title = %q", chs[0].Title)
	}
}

func TestBuildTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Home\n")
	writeFile(t, root, "zz.md", "# Z\n")
	writeFile(t, root, "ch01/README.md", "# One\n")
	writeFile(t, root, "ch01/extra.md", "# Extra\n")
	writeFile(t, root, "assets/logo.png", "binary")

	tree, err := BuildTree(root)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	if len(tree.Children) != 3 {
		t.Fatalf("expected dir + 2 files at root, got %+v", tree.Children)
	}
	// Directories sort before files, README.md before siblings.
	if tree.Children[0].Name != "ch01" || tree.Children[0].Type != "dir" {
		t.Fatalf("expected ch01 first, got %+v", tree.Children[0])
	}
	if tree.Children[1].Name != "README.md" {
		t.Fatalf("expected README.md before zz.md, got %+v", tree.Children[1])
	}

	ch := tree.Children[0]
	if len(ch.Children) != 2 || ch.Children[0].Name != "README.md" {
		t.Fatalf("expected README.md first in ch01: %+v", ch.Children)
	}
	if ch.Children[1].Path != "ch01/extra.md" {
		t.Fatalf("path = %q", ch.Children[1].Path)
	}
}
