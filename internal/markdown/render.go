package markdown

import (
	"fmt"
	"strings"
)

func (r *Renderer) writeBlock(b *strings.Builder, blk block) {
	switch blk.kind {
	case blockHeading:
		fmt.Fprintf(b, "<h%d id=\"%s\">%s</h%d>\n",
			blk.level, Slugify(blk.text), renderInline(blk.text), blk.level)

	case blockCode:
		body := r.highlightCode(blk.lang, blk.text)
		if blk.lang != "" {
			fmt.Fprintf(b, "<pre><code class=\"language-%s\">%s</code></pre>\n",
				EscapeHTML(blk.lang), body)
		} else {
			fmt.Fprintf(b, "<pre><code>%s</code></pre>\n", body)
		}

	case blockTable:
		b.WriteString("<div class=\"table-scroll\"><table>\n<thead><tr>")
		for _, c := range blk.rows[0] {
			b.WriteString("<th>" + renderInline(c) + "</th>")
		}
		b.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range blk.rows[1:] {
			b.WriteString("<tr>")
			for _, c := range row {
				b.WriteString("<td>" + renderInline(c) + "</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table></div>\n")

	case blockList:
		writeList(b, blk.items)

	case blockQuote:
		b.WriteString("<blockquote><p>" + renderInline(blk.text) + "</p></blockquote>\n")

	case blockRule:
		b.WriteString("<hr>\n")

	case blockCallout:
		fmt.Fprintf(b, "<div class=\"callout callout-%s\"><p>%s</p></div>\n",
			blk.label, renderInline(blk.text))

	case blockHTML:
		b.WriteString(blk.text)
		b.WriteByte('\n')

	default:
		b.WriteString("<p>" + renderInline(blk.text) + "</p>\n")
	}
}

// writeList serializes one run of items, opening and closing ul/ol
// elements as the nesting depth changes. Indentation jumps deeper than
// one level are clamped.
func writeList(b *strings.Builder, items []listItem) {
	var stack []string

	for _, it := range items {
		depth := it.depth
		if depth > len(stack) {
			depth = len(stack)
		}
		for len(stack) > depth+1 {
			b.WriteString("</" + stack[len(stack)-1] + ">\n")
			stack = stack[:len(stack)-1]
		}
		if len(stack) == depth {
			tag := "ul"
			if it.ordered {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">\n")
			stack = append(stack, tag)
		}
		b.WriteString("<li>" + renderInline(it.text) + "</li>\n")
	}
	for len(stack) > 0 {
		b.WriteString("</" + stack[len(stack)-1] + ">\n")
		stack = stack[:len(stack)-1]
	}
}

func (r *Renderer) highlightCode(lang, code string) string {
	if !r.opts.Highlight {
		return EscapeHTML(code)
	}
	switch lang {
	case "asm", "assembly", "fasm", "nasm":
		return highlightAsm(code)
	case "js", "javascript":
		return highlightJS(code)
	case "html", "xml":
		return highlightHTML(code)
	case "css":
		return highlightCSS(code)
	default:
		return EscapeHTML(code)
	}
}
