package search

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fasmbook/internal/util"
)

// Fallback performs a best-effort fixed-string search without ripgrep:
// smart-case match over markdown chapters, up to limit results, bounded
// by a small time budget.
func Fallback(rootAbs, query string, limit int) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{Query: query}, nil
	}
	if limit <= 0 {
		limit = 200
	}

	deadline := time.Now().Add(3 * time.Second)
	resp := Response{Query: query, Results: make([]Result, 0, 32)}

	skipDirs := map[string]struct{}{
		".git":         {},
		"node_modules": {},
		"vendor":       {},
		".idea":        {},
		".vscode":      {},
	}

	caseSensitive := strings.ContainsFunc(query, func(r rune) bool {
		return 'A' <= r && r <= 'Z'
	})
	qLower := strings.ToLower(query)

	err := filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Best-effort; skip unreadable entries.
			return nil
		}
		if time.Now().After(deadline) {
			resp.Truncated = true
			return fs.SkipAll
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

		relOS, err := filepath.Rel(rootAbs, p)
		if err != nil {
			return nil
		}
		rel := filepath.ToSlash(relOS)

		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()

		s := bufio.NewScanner(f)
		s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for s.Scan() {
			lineNo++
			line := strings.TrimRight(s.Text(), "\r\n")
			if line == "" {
				continue
			}
			matched := false
			if caseSensitive {
				matched = strings.Contains(line, query)
			} else {
				matched = strings.Contains(strings.ToLower(line), qLower)
			}
			if !matched {
				continue
			}

			resp.Results = append(resp.Results, Result{Path: path.Clean(rel), Line: lineNo, Preview: line})
			if len(resp.Results) >= limit {
				resp.Truncated = true
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return Response{}, err
	}

	return resp, nil
}

// Chapters searches with ripgrep when present, otherwise with the
// built-in scan.
func Chapters(rootAbs, query string, limit int) (Response, error) {
	resp, err := Ripgrep(rootAbs, query, limit)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, ErrRipgrepNotFound) {
		return Fallback(rootAbs, query, limit)
	}
	return Response{}, err
}
