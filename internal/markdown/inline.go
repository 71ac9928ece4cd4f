package markdown

import "strings"

// renderInline applies span-level formatting to the text of one block:
// code spans, strong/emphasis/strikethrough, links, images, and line
// breaks. Delimiters with no matching closer stay literal. Raw inline
// HTML passes through untouched; sanitization is the caller's concern.
//
// The scanner consumes each construct at its opening delimiter, so
// emitted markup is never re-scanned and "**" can never be matched as
// two emphasis markers.
func renderInline(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	i := 0
	for i < len(s) {
		switch s[i] {
		case '`':
			if j := strings.IndexByte(s[i+1:], '`'); j >= 0 {
				b.WriteString("<code>" + EscapeHTML(s[i+1:i+1+j]) + "</code>")
				i += j + 2
				continue
			}

		case '*':
			if strings.HasPrefix(s[i:], "**") {
				if j := strings.Index(s[i+2:], "**"); j > 0 {
					b.WriteString("<strong>" + renderInline(s[i+2:i+2+j]) + "</strong>")
					i += j + 4
					continue
				}
			} else if j := strings.IndexByte(s[i+1:], '*'); j > 0 {
				b.WriteString("<em>" + renderInline(s[i+1:i+1+j]) + "</em>")
				i += j + 2
				continue
			}

		case '~':
			if strings.HasPrefix(s[i:], "~~") {
				if j := strings.Index(s[i+2:], "~~"); j > 0 {
					b.WriteString("<del>" + renderInline(s[i+2:i+2+j]) + "</del>")
					i += j + 4
					continue
				}
			}

		case '!':
			if i+1 < len(s) && s[i+1] == '[' {
				if alt, src, n := parseLinkParts(s[i+1:]); n > 0 {
					b.WriteString(`<img src="` + EscapeHTML(src) +
						`" alt="` + EscapeHTML(alt) + `" loading="lazy">`)
					i += n + 1
					continue
				}
			}

		case '[':
			if text, href, n := parseLinkParts(s[i:]); n > 0 {
				b.WriteString(anchor(href, renderInline(text)))
				i += n
				continue
			}

		case '\n':
			b.WriteString("<br>\n")
			i++
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseLinkParts parses a leading "[text](dest)" and returns its pieces
// plus the number of bytes consumed, or n == 0 if s does not open a
// well-formed link.
func parseLinkParts(s string) (text, dest string, n int) {
	depth := 0
	end := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 || end+1 >= len(s) || s[end+1] != '(' {
		return "", "", 0
	}
	stop := strings.IndexByte(s[end+2:], ')')
	if stop < 0 {
		return "", "", 0
	}
	return s[1:end], s[end+2 : end+2+stop], end + stop + 3
}

// anchor renders one hyperlink. Internal destinations (fragment or
// absolute-path) stay in the page; everything else opens a new tab with
// the opener relationship severed.
func anchor(href, inner string) string {
	esc := EscapeHTML(href)
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") {
		return `<a href="` + esc + `">` + inner + `</a>`
	}
	return `<a href="` + esc + `" target="_blank" rel="noopener noreferrer">` + inner + `</a>`
}
