package markdown

import (
	"regexp"
	"strings"
)

// TOCItem is one heading in a rendered chapter, in document order.
type TOCItem struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

var (
	tocHeadingRe = regexp.MustCompile(`<h([1-6]) id="([^"]*)">(.*?)</h[1-6]>`)
	tocTagRe     = regexp.MustCompile(`<[^>]+>`)
)

// ExtractTOC scans an already-rendered fragment for headings carrying
// injected ids and returns them in order. Inline markup inside a heading
// is stripped from the title.
func ExtractTOC(html string) []TOCItem {
	ms := tocHeadingRe.FindAllStringSubmatch(html, -1)
	items := make([]TOCItem, 0, len(ms))
	for _, m := range ms {
		items = append(items, TOCItem{
			Level: int(m[1][0] - '0'),
			ID:    m[2],
			Title: strings.TrimSpace(tocTagRe.ReplaceAllString(m[3], "")),
		})
	}
	return items
}
