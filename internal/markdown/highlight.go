package markdown

import "strings"

// Token-class highlighting for the fixed set of chapter languages. Each
// highlighter tokenizes the raw code body in a single pass and escapes
// token text as it is emitted, so a wrapped span can never be matched
// again by a later class.

func span(class, text string) string {
	return `<span class="hl-` + class + `">` + EscapeHTML(text) + `</span>`
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool { return isIdentStart(c) || isDigit(c) }

var asmInstructions = wordSet(
	"mov", "movzx", "movsx", "lea", "xchg", "push", "pop", "pusha", "popa",
	"pushad", "popad", "pushf", "popf", "add", "adc", "sub", "sbb", "mul",
	"imul", "div", "idiv", "inc", "dec", "neg", "cmp", "test", "and", "or",
	"xor", "not", "shl", "shr", "sal", "sar", "rol", "ror", "rcl", "rcr",
	"jmp", "call", "ret", "retn", "iret", "je", "jne", "jz", "jnz", "jg",
	"jge", "jl", "jle", "ja", "jae", "jb", "jbe", "jc", "jnc", "jo", "jno",
	"js", "jns", "loop", "loope", "loopne", "int", "nop", "hlt", "cld",
	"std", "cli", "sti", "cbw", "cwd", "cdq", "cqo", "in", "out", "rep",
	"repe", "repne", "movsb", "movsw", "movsd", "lodsb", "lodsw", "lodsd",
	"stosb", "stosw", "stosd", "cmpsb", "cmpsw", "scasb", "scasw", "cpuid",
	"rdtsc", "syscall", "sysenter", "enter", "leave", "sete", "setne",
	"setz", "setnz", "setg", "setl", "cmove", "cmovne", "cmovz", "cmovnz",
	"bt", "bts", "btr", "bswap", "xadd", "cmpxchg", "lock", "pause", "fld",
	"fst", "fstp", "fadd", "fsub", "fmul", "fdiv",
)

var asmRegisters = wordSet(
	"al", "ah", "bl", "bh", "cl", "ch", "dl", "dh",
	"ax", "bx", "cx", "dx", "si", "di", "sp", "bp",
	"eax", "ebx", "ecx", "edx", "esi", "edi", "esp", "ebp",
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rsp", "rbp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"cs", "ds", "es", "fs", "gs", "ss", "eip", "rip", "eflags",
	"st0", "st1", "st2", "st3", "st4", "st5", "st6", "st7",
	"mm0", "mm1", "mm2", "mm3", "mm4", "mm5", "mm6", "mm7",
	"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
)

var asmDirectives = wordSet(
	"format", "include", "entry", "section", "segment", "use16", "use32",
	"use64", "org", "db", "dw", "dd", "dq", "dt", "du", "rb", "rw", "rd",
	"rq", "equ", "fix", "macro", "endm", "purge", "rept", "irp", "match",
	"struc", "virtual", "end", "if", "else", "label", "align", "display",
	"proc", "endp", "stdcall", "ccall", "invoke", "cinvoke", "local",
	"public", "extrn", "byte", "word", "dword", "qword", "ptr", "times",
	"executable", "readable", "writeable", "import", "export", "heap",
	"stack",
)

// highlightAsm classifies FASM-flavored assembly: instruction, register
// and directive word classes, numeric literals (decimal, 0x-prefixed and
// suffixed hex/binary), ;-comments and quoted strings.
func highlightAsm(code string) string {
	var b strings.Builder
	b.Grow(len(code) * 2)
	i := 0
	for i < len(code) {
		c := code[i]
		switch {
		case c == ';':
			j := lineEnd(code, i)
			b.WriteString(span("comment", code[i:j]))
			i = j

		case c == '\'' || c == '"':
			j := quotedEnd(code, i, false)
			b.WriteString(span("string", code[i:j]))
			i = j

		case isDigit(c):
			j := i + 1
			for j < len(code) && isIdentByte(code[j]) {
				j++
			}
			b.WriteString(span("number", code[i:j]))
			i = j

		case isIdentStart(c) || c == '.':
			j := i + 1
			for j < len(code) && (isIdentByte(code[j]) || code[j] == '.') {
				j++
			}
			word := strings.ToLower(code[i:j])
			switch {
			case setHas(asmInstructions, word):
				b.WriteString(span("instruction", code[i:j]))
			case setHas(asmRegisters, word):
				b.WriteString(span("register", code[i:j]))
			case setHas(asmDirectives, word):
				b.WriteString(span("directive", code[i:j]))
			default:
				b.WriteString(EscapeHTML(code[i:j]))
			}
			i = j

		default:
			b.WriteString(EscapeHTML(code[i : i+1]))
			i++
		}
	}
	return b.String()
}

var jsKeywords = wordSet(
	"async", "await", "break", "case", "catch", "class", "const",
	"continue", "debugger", "default", "delete", "do", "else", "export",
	"extends", "false", "finally", "for", "function", "if", "import",
	"in", "instanceof", "let", "new", "null", "of", "return", "static",
	"super", "switch", "this", "throw", "true", "try", "typeof",
	"undefined", "var", "void", "while", "with", "yield",
)

// highlightJS classifies keywords, line and block comments, the three
// string delimiter styles, and numbers.
func highlightJS(code string) string {
	var b strings.Builder
	b.Grow(len(code) * 2)
	i := 0
	for i < len(code) {
		c := code[i]
		switch {
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			j := lineEnd(code, i)
			b.WriteString(span("comment", code[i:j]))
			i = j

		case c == '/' && i+1 < len(code) && code[i+1] == '*':
			j := delimitedEnd(code, i+2, "*/")
			b.WriteString(span("comment", code[i:j]))
			i = j

		case c == '\'' || c == '"' || c == '`':
			j := quotedEnd(code, i, c == '`')
			b.WriteString(span("string", code[i:j]))
			i = j

		case isDigit(c):
			j := i + 1
			for j < len(code) && (isIdentByte(code[j]) || code[j] == '.') {
				j++
			}
			b.WriteString(span("number", code[i:j]))
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(code) && isIdentByte(code[j]) {
				j++
			}
			if _, ok := jsKeywords[code[i:j]]; ok {
				b.WriteString(span("keyword", code[i:j]))
			} else {
				b.WriteString(EscapeHTML(code[i:j]))
			}
			i = j

		default:
			b.WriteString(EscapeHTML(code[i : i+1]))
			i++
		}
	}
	return b.String()
}

// highlightHTML classifies tag names, attribute names and attribute
// values; text content stays plain.
func highlightHTML(code string) string {
	var b strings.Builder
	b.Grow(len(code) * 2)
	i := 0
	for i < len(code) {
		if strings.HasPrefix(code[i:], "<!--") {
			j := delimitedEnd(code, i+4, "-->")
			b.WriteString(span("comment", code[i:j]))
			i = j
			continue
		}
		if code[i] == '<' {
			j := strings.IndexByte(code[i:], '>')
			if j < 0 {
				b.WriteString(EscapeHTML(code[i:]))
				break
			}
			writeTag(&b, code[i:i+j+1])
			i += j + 1
			continue
		}
		j := strings.IndexByte(code[i:], '<')
		if j < 0 {
			b.WriteString(EscapeHTML(code[i:]))
			break
		}
		b.WriteString(EscapeHTML(code[i : i+j]))
		i += j
	}
	return b.String()
}

// writeTag renders one raw "<...>" tag.
func writeTag(b *strings.Builder, tag string) {
	i := 1
	if i < len(tag) && (tag[i] == '/' || tag[i] == '!') {
		i++
	}
	b.WriteString(EscapeHTML(tag[:i]))

	j := i
	for j < len(tag) && (isIdentByte(tag[j]) || tag[j] == '-' || tag[j] == ':') {
		j++
	}
	if j > i {
		b.WriteString(span("tag", tag[i:j]))
	}
	i = j

	for i < len(tag) {
		c := tag[i]
		switch {
		case isIdentStart(c):
			j = i + 1
			for j < len(tag) && (isIdentByte(tag[j]) || tag[j] == '-') {
				j++
			}
			b.WriteString(span("attr", tag[i:j]))
			i = j
		case c == '"' || c == '\'':
			j = quotedEnd(tag, i, false)
			b.WriteString(span("string", tag[i:j]))
			i = j
		default:
			b.WriteString(EscapeHTML(tag[i : i+1]))
			i++
		}
	}
}

// highlightCSS classifies selectors (outside declaration blocks),
// property names and declared values (inside), and comments.
func highlightCSS(code string) string {
	var b strings.Builder
	b.Grow(len(code) * 2)
	i := 0
	inBlock := false
	for i < len(code) {
		if strings.HasPrefix(code[i:], "/*") {
			j := delimitedEnd(code, i+2, "*/")
			b.WriteString(span("comment", code[i:j]))
			i = j
			continue
		}
		c := code[i]
		switch {
		case c == '{':
			inBlock = true
			b.WriteByte('{')
			i++
		case c == '}':
			inBlock = false
			b.WriteByte('}')
			i++
		case !inBlock:
			j := i
			for j < len(code) && code[j] != '{' && code[j] != '}' && !strings.HasPrefix(code[j:], "/*") {
				j++
			}
			spanTrim(&b, "selector", code[i:j])
			i = j
		default:
			j := i
			for j < len(code) && code[j] != ':' && code[j] != ';' && code[j] != '}' && !strings.HasPrefix(code[j:], "/*") {
				j++
			}
			spanTrim(&b, "property", code[i:j])
			i = j
			if i < len(code) && code[i] == ':' {
				b.WriteByte(':')
				i++
				k := i
				for k < len(code) && code[k] != ';' && code[k] != '}' {
					k++
				}
				spanTrim(&b, "value", code[i:k])
				i = k
			}
			if i < len(code) && code[i] == ';' {
				b.WriteByte(';')
				i++
			}
		}
	}
	return b.String()
}

// spanTrim wraps the trimmed middle of text in a span, keeping the
// surrounding whitespace outside the element.
func spanTrim(b *strings.Builder, class, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		b.WriteString(EscapeHTML(text))
		return
	}
	lead := text[:strings.Index(text, trimmed)]
	trail := text[len(lead)+len(trimmed):]
	b.WriteString(EscapeHTML(lead))
	b.WriteString(span(class, trimmed))
	b.WriteString(EscapeHTML(trail))
}

func setHas(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// lineEnd returns the index just before the newline terminating the line
// that starts at or contains i.
func lineEnd(code string, i int) int {
	if j := strings.IndexByte(code[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(code)
}

// quotedEnd returns the index past the closing quote of the string
// opening at i, honoring backslash escapes. Unless multiline is set an
// unterminated string stops at the end of the line.
func quotedEnd(code string, i int, multiline bool) int {
	q := code[i]
	j := i + 1
	for j < len(code) {
		switch code[j] {
		case '\\':
			j += 2
			continue
		case q:
			return j + 1
		case '\n':
			if !multiline {
				return j
			}
		}
		j++
	}
	return len(code)
}

// delimitedEnd returns the index past the closing delimiter, or the end
// of code when the construct is unterminated.
func delimitedEnd(code string, from int, delim string) int {
	if j := strings.Index(code[from:], delim); j >= 0 {
		return from + j + len(delim)
	}
	return len(code)
}
