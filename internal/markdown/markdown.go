// Package markdown renders the constrained Markdown dialect used by book
// chapters into HTML fragments.
//
// The renderer is a pure text transform: Render never fails, holds no
// mutable state beyond its construction-time options, and is safe for
// concurrent use. Malformed constructs degrade to literal text.
//
// Rendering happens in three stages: a line-oriented scan groups the
// source into block tokens (headings, fenced code, tables, lists,
// blockquotes, rules, callouts, paragraphs), inline formatting is applied
// to the text of non-code blocks only, and the block sequence is
// serialized once. Code inside fences is never touched by inline passes,
// and emitted markup is never re-scanned.
package markdown

import (
	"regexp"
	"strings"
)

// Options selects which optional passes run. The zero value disables all
// of them; DefaultOptions is what the book server uses.
type Options struct {
	Highlight bool // syntax highlighting inside fenced code blocks
	Tables    bool // pipe-table support

	// Reserved flags carried by the config surface. No pass consumes
	// them yet.
	Math     bool
	Diagrams bool
}

// DefaultOptions enables highlighting and tables.
func DefaultOptions() Options {
	return Options{Highlight: true, Tables: true}
}

// Renderer converts chapter Markdown into an HTML fragment.
type Renderer struct {
	opts Options
}

// New returns a Renderer. A single instance may be shared freely.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render converts src into an HTML fragment. It has no failure mode:
// constructs the dialect cannot make sense of pass through as literal
// text instead of erroring.
func (r *Renderer) Render(src string) string {
	blocks := parseBlocks(src, r.opts)
	var b strings.Builder
	b.Grow(len(src) + len(src)/2)
	for _, blk := range blocks {
		r.writeBlock(&b, blk)
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes text destined for code elements and attribute
// values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var (
	slugStripRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugHyphenRe = regexp.MustCompile(`\s+`)
)

// Slugify derives a heading id: lowercase, non-word characters stripped,
// runs of whitespace collapsed to single hyphens. Identical headings
// produce identical ids; de-duplication is deliberately not attempted.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugHyphenRe.ReplaceAllString(s, "-")
	return s
}
