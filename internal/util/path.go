package util

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

func IsMarkdownFileName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

type Resolved struct {
	Abs string
	Rel string // forward slashes
}

// ErrPathEscapesRoot marks a request for a path outside the book
// directory.
var ErrPathEscapesRoot = errors.New("path escapes book root")

// ResolveBookPath cleans relURL and anchors it under rootAbs. Any ".."
// element is refused outright rather than normalized away, so a request
// carrying one always fails instead of silently landing elsewhere in
// the book.
func ResolveBookPath(rootAbs, relURL string) (abs string, rel string, err error) {
	relURL = strings.TrimPrefix(relURL, "/")
	for _, part := range strings.Split(relURL, "/") {
		if part == ".." {
			return "", "", ErrPathEscapesRoot
		}
	}
	relURL = path.Clean("/" + relURL)
	relURL = strings.TrimPrefix(relURL, "/")
	if relURL == "." {
		relURL = ""
	}
	relOS := filepath.FromSlash(relURL)
	abs = filepath.Join(rootAbs, relOS)

	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", "", err
	}
	rootAbs2, err := filepath.Abs(rootAbs)
	if err != nil {
		return "", "", err
	}

	// Ensure the resolved path stays within root.
	relCheck, err := filepath.Rel(rootAbs2, abs)
	if err != nil {
		return "", "", err
	}
	if relCheck == ".." || strings.HasPrefix(relCheck, "..") {
		return "", "", ErrPathEscapesRoot
	}
	return abs, filepath.ToSlash(relCheck), nil
}

// ResolveChapterRel resolves rel to a markdown chapter file. Directories
// resolve to their README.md, matching how the navigation tree links
// them.
func ResolveChapterRel(rootAbs, rel string) (Resolved, error) {
	rel = filepath.ToSlash(rel)
	abs, cleanRel, err := ResolveBookPath(rootAbs, rel)
	if err != nil {
		return Resolved{}, err
	}

	st, statErr := os.Stat(abs)
	if statErr != nil {
		return Resolved{}, statErr
	}
	if st.IsDir() {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return Resolved{}, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(e.Name(), "README.md") {
				rr := path.Join(cleanRel, e.Name())
				aa, _, err := ResolveBookPath(rootAbs, rr)
				if err != nil {
					return Resolved{}, err
				}
				return Resolved{Abs: aa, Rel: rr}, nil
			}
		}
		return Resolved{}, os.ErrNotExist
	}

	if !IsMarkdownFileName(path.Base(cleanRel)) {
		return Resolved{}, errors.New("not a markdown file")
	}
	return Resolved{Abs: abs, Rel: cleanRel}, nil
}

func Stat(abs string) (os.FileInfo, error) {
	return os.Stat(abs)
}
