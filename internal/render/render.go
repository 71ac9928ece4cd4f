// Package render turns chapter files into sanitized HTML fragments
// ready for the reader UI, caching results by file modification time.
package render

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"fasmbook/internal/markdown"
	"fasmbook/internal/util"
)

type Options struct {
	BookRootAbs string
	Markdown    markdown.Options
}

// Result is the JSON shape the reader consumes for one chapter.
type Result struct {
	Path  string             `json:"path"`
	Title string             `json:"title"`
	HTML  string             `json:"html"`
	TOC   []markdown.TOCItem `json:"toc"`
	MTime int64              `json:"mtime"`
}

type Renderer struct {
	rootAbs string
	md      *markdown.Renderer
	policy  *bluemonday.Policy

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	mtime int64
	res   Result
}

func New(opts Options) (*Renderer, error) {
	if opts.BookRootAbs == "" {
		return nil, fmt.Errorf("BookRootAbs is required")
	}

	r := &Renderer{
		rootAbs: opts.BookRootAbs,
		md:      markdown.New(opts.Markdown),
		cache:   make(map[string]cached),
	}

	// The markdown core escapes code and attribute text but passes raw
	// inline HTML through; this policy is the sanitizer the output
	// contract defers to.
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").OnElements("div", "pre", "code", "span")
	p.AllowAttrs("href", "rel", "target").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "loading").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	r.policy = p

	return r, nil
}

// RenderFile renders one chapter by book-relative path. Results are
// cached and invalidated by mtime, so repeated loads of an unchanged
// chapter are free.
func (r *Renderer) RenderFile(rel string) (Result, error) {
	rel = filepath.ToSlash(rel)
	abs, rel, err := util.ResolveBookPath(r.rootAbs, rel)
	if err != nil {
		return Result{}, err
	}

	st, err := os.Stat(abs)
	if err != nil {
		return Result{}, err
	}
	mtime := st.ModTime().UnixNano()

	r.mu.Lock()
	if c, ok := r.cache[rel]; ok && c.mtime == mtime {
		res := c.res
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	src, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, err
	}

	htmlOut := r.policy.Sanitize(r.md.Render(string(src)))
	toc := markdown.ExtractTOC(htmlOut)

	title := ""
	for _, it := range toc {
		if it.Level == 1 {
			title = it.Title
			break
		}
	}
	if title == "" {
		title = path.Base(rel)
	}

	res := Result{
		Path:  rel,
		Title: title,
		HTML:  htmlOut,
		TOC:   toc,
		MTime: mtime,
	}

	r.mu.Lock()
	r.cache[rel] = cached{mtime: mtime, res: res}
	r.mu.Unlock()

	return res, nil
}
