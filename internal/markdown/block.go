package markdown

import (
	"regexp"
	"strings"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockCode
	blockQuote
	blockList
	blockTable
	blockRule
	blockCallout
	blockHTML
)

type listItem struct {
	depth   int // nesting level, one per two leading spaces
	ordered bool
	text    string
}

type block struct {
	kind  blockKind
	level int        // heading level 1..6
	lang  string     // fence language tag, lowercased
	text  string     // heading/paragraph/quote/callout text, code body, or raw HTML
	label string     // callout class: exercise, example, tip, warning, note
	items []listItem // list items, document order
	rows  [][]string // table rows; rows[0] is the header
}

var (
	fenceOpenRe = regexp.MustCompile("^```[ \t]*([A-Za-z0-9+#._-]*)[ \t]*$")
	listItemRe  = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s+(.*)$`)
	tableRowRe  = regexp.MustCompile(`^\|.*\|$`)
	tableSepRe  = regexp.MustCompile(`^\|[-\s|:]+\|$`)
	calloutRe   = regexp.MustCompile(`^[^\w\s<>*]*\s*\*\*(Exercise|Example|Tip|Warning|Note)\b`)
	blockTagRe  = regexp.MustCompile(`^</?(p|div|h[1-6]|ul|ol|li|table|pre|blockquote|section|article|aside|figure|details|summary|hr|img|iframe|video|audio)\b`)
)

var calloutClasses = map[string]string{
	"Exercise": "exercise",
	"Example":  "example",
	"Tip":      "tip",
	"Warning":  "warning",
	"Note":     "note",
}

// parseBlocks groups the source into a flat block sequence with one
// line-oriented scan.
func parseBlocks(src string, opts Options) []block {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var blocks []block
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			i++
			continue
		}

		// Fenced code. An opening fence with no closing fence is not a
		// code block: the fence line stays literal text and scanning
		// resumes on the following line, so an unterminated fence can
		// never swallow the rest of the chapter.
		if m := fenceOpenRe.FindStringSubmatch(line); m != nil {
			if end := findFenceClose(lines, i+1); end >= 0 {
				blocks = append(blocks, block{
					kind: blockCode,
					lang: strings.ToLower(m[1]),
					text: strings.Join(lines[i+1:end], "\n"),
				})
				i = end + 1
				continue
			}
		}

		// ATX headings, levels 1 through 6. The marker length decides the
		// level exactly, so "###" can never be matched as part of "##".
		if lvl, text, ok := headingLine(line); ok {
			blocks = append(blocks, block{kind: blockHeading, level: lvl, text: text})
			i++
			continue
		}

		// Horizontal rule: a line of 3+ repeated *, - or _.
		if isRuleLine(trimmed) {
			blocks = append(blocks, block{kind: blockRule})
			i++
			continue
		}

		// Tables: a pipe row directly followed by a separator row starts a
		// run. The separator contributes no output; the run ends at the
		// first non-row line.
		if opts.Tables && tableRowRe.MatchString(trimmed) &&
			i+1 < len(lines) && tableSepRe.MatchString(strings.TrimSpace(lines[i+1])) {
			rows := [][]string{splitTableRow(trimmed)}
			j := i + 2
			for j < len(lines) {
				t := strings.TrimSpace(lines[j])
				if !tableRowRe.MatchString(t) {
					break
				}
				rows = append(rows, splitTableRow(t))
				j++
			}
			blocks = append(blocks, block{kind: blockTable, rows: rows})
			i = j
			continue
		}

		// Blockquotes: contiguous > lines, space-joined into one
		// paragraph.
		if strings.HasPrefix(trimmed, ">") {
			var parts []string
			j := i
			for j < len(lines) {
				t := strings.TrimSpace(lines[j])
				if !strings.HasPrefix(t, ">") {
					break
				}
				parts = append(parts, strings.TrimSpace(strings.TrimPrefix(t, ">")))
				j++
			}
			blocks = append(blocks, block{kind: blockQuote, text: strings.Join(parts, " ")})
			i = j
			continue
		}

		// Lists. Blank lines inside a run do not terminate it; the run
		// ends at the first non-blank, non-item line.
		if listItemRe.MatchString(line) {
			var items []listItem
			j := i
			for j < len(lines) {
				if strings.TrimSpace(lines[j]) == "" {
					k := j
					for k < len(lines) && strings.TrimSpace(lines[k]) == "" {
						k++
					}
					if k < len(lines) && listItemRe.MatchString(lines[k]) {
						j = k
						continue
					}
					break
				}
				im := listItemRe.FindStringSubmatch(lines[j])
				if im == nil {
					break
				}
				items = append(items, listItem{
					depth:   len(im[1]) / 2,
					ordered: im[2] != "-" && im[2] != "*" && im[2] != "+",
					text:    im[3],
				})
				j++
			}
			blocks = append(blocks, block{kind: blockList, items: items})
			i = j
			continue
		}

		// Everything else accumulates into a paragraph until a blank line
		// or the start of another block.
		var para []string
		j := i
		for j < len(lines) {
			if startsBlock(lines[j], opts) {
				break
			}
			para = append(para, lines[j])
			j++
		}
		if len(para) == 0 {
			// The line opened a construct we fell through from (an
			// unterminated fence); keep it as a single literal line.
			para = append(para, line)
			j = i + 1
		}
		blocks = append(blocks, classifyParagraph(strings.Join(para, "\n")))
		i = j
	}
	return blocks
}

func findFenceClose(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "```" {
			return j
		}
	}
	return -1
}

func headingLine(line string) (level int, text string, ok bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0, "", false
	}
	return n, strings.TrimSpace(line[n+1:]), true
}

func isRuleLine(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '*' && c != '-' && c != '_' {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return false
		}
	}
	return true
}

func splitTableRow(trimmed string) []string {
	parts := strings.Split(strings.Trim(trimmed, "|"), "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// startsBlock reports whether line opens a construct that must terminate
// a paragraph run.
func startsBlock(line string, opts Options) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if fenceOpenRe.MatchString(line) {
		return true
	}
	if _, _, ok := headingLine(line); ok {
		return true
	}
	if isRuleLine(trimmed) {
		return true
	}
	if opts.Tables && tableRowRe.MatchString(trimmed) {
		return true
	}
	if strings.HasPrefix(trimmed, ">") {
		return true
	}
	return listItemRe.MatchString(line)
}

// classifyParagraph decides between a callout box, raw block-level HTML
// passed through verbatim, and an ordinary paragraph. A callout is a
// paragraph opening with the emoji-and-bold-label convention and ends,
// like any paragraph, at the next blank line.
func classifyParagraph(text string) block {
	if m := calloutRe.FindStringSubmatch(text); m != nil {
		return block{kind: blockCallout, text: text, label: calloutClasses[m[1]]}
	}
	if blockTagRe.MatchString(strings.TrimSpace(text)) {
		return block{kind: blockHTML, text: text}
	}
	return block{kind: blockParagraph, text: text}
}
