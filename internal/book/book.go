// Package book describes the chapter collection being served: its
// optional book.yml configuration, the ordered chapter list, and the
// navigation tree.
package book

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"fasmbook/internal/markdown"
	"fasmbook/internal/util"
)

// Chapter is one entry in the reading order.
type Chapter struct {
	Path  string `yaml:"path" json:"path"`
	Title string `yaml:"title,omitempty" json:"title"`
}

// Flags mirrors markdown.Options in the config file. Highlight and
// Tables default to on when unset.
type Flags struct {
	Highlight *bool `yaml:"highlight" json:"highlight,omitempty"`
	Tables    *bool `yaml:"tables" json:"tables,omitempty"`
	Math      bool  `yaml:"math" json:"math,omitempty"`
	Diagrams  bool  `yaml:"diagrams" json:"diagrams,omitempty"`
}

// Config is the parsed book.yml. Every field is optional; a missing file
// yields a usable default configuration.
type Config struct {
	Title    string    `yaml:"title" json:"title"`
	Author   string    `yaml:"author" json:"author,omitempty"`
	Chapters []Chapter `yaml:"chapters" json:"chapters"`
	Render   Flags     `yaml:"render" json:"render"`
}

// MarkdownOptions maps the config flags onto renderer options.
func (f Flags) MarkdownOptions() markdown.Options {
	opts := markdown.DefaultOptions()
	if f.Highlight != nil {
		opts.Highlight = *f.Highlight
	}
	if f.Tables != nil {
		opts.Tables = *f.Tables
	}
	opts.Math = f.Math
	opts.Diagrams = f.Diagrams
	return opts
}

// LoadConfig reads book.yml (or book.yaml) at the book root. A missing
// file is not an error: the title falls back to the directory name and
// chapters are discovered by scanning.
func LoadConfig(rootAbs string) (Config, error) {
	var cfg Config
	var raw []byte
	var err error
	for _, name := range []string{"book.yml", "book.yaml"} {
		raw, err = os.ReadFile(filepath.Join(rootAbs, name))
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if err == nil {
		if uerr := yaml.Unmarshal(raw, &cfg); uerr != nil {
			return Config{}, fmt.Errorf("parse book config: %w", uerr)
		}
	}

	if cfg.Title == "" {
		cfg.Title = filepath.Base(rootAbs)
	}
	for i := range cfg.Chapters {
		cfg.Chapters[i].Path = filepath.ToSlash(cfg.Chapters[i].Path)
	}
	return cfg, nil
}

// ListChapters returns the reading order: the explicit config order when
// present, otherwise every markdown file under the root in sorted order.
// Chapters without a configured title get one from their first heading,
// falling back to the file name.
func ListChapters(rootAbs string, cfg Config) ([]Chapter, error) {
	chapters := append([]Chapter(nil), cfg.Chapters...)
	if len(chapters) == 0 {
		files, err := scanMarkdown(rootAbs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			chapters = append(chapters, Chapter{Path: f})
		}
	}

	for i := range chapters {
		if chapters[i].Title != "" {
			continue
		}
		abs := filepath.Join(rootAbs, filepath.FromSlash(chapters[i].Path))
		if title := firstHeading(abs); title != "" {
			chapters[i].Title = title
		} else {
			chapters[i].Title = strings.TrimSuffix(filepath.Base(chapters[i].Path), filepath.Ext(chapters[i].Path))
		}
	}
	return chapters, nil
}

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	".idea":        {},
	".vscode":      {},
}

func scanMarkdown(rootAbs string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if _, ok := skipDirs[d.Name()]; ok {
				return fs.SkipDir
			}
			return nil
		}
		if !util.IsMarkdownFileName(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(rootAbs, p)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// firstHeading returns the text of the first ATX heading near the top of
// the file, or "".
func firstHeading(abs string) string {
	f, err := os.Open(abs)
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for n := 0; s.Scan() && n < 40; n++ {
		line := s.Text()
		trimmed := strings.TrimLeft(line, "#")
		if len(trimmed) < len(line) && strings.HasPrefix(trimmed, " ") {
			return strings.TrimSpace(trimmed)
		}
	}
	return ""
}
