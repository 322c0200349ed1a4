package features

import (
	"regexp"
	"strings"
)

// The scan builder recovers a skeleton without a grammar: indentation for
// python, brace and paren matching for the other languages. It backs the
// structural builder whenever tree-sitter is unavailable or fails.

var (
	pyBlockRe      = regexp.MustCompile(`^(async\s+)?(for|while|if|elif|else|try|except|finally|with|def|class)\b`)
	pyDefRe        = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	pyCompRe       = regexp.MustCompile(`[\[{(][^\[\]{}()\n]*\bfor\b[^\[\]{}()\n]*\bin\b[^\[\]{}()\n]*[\]})]`)
	pyDecideRe     = regexp.MustCompile(`\b(if|elif|for|while|except|with|and|or)\b`)
	condRe         = regexp.MustCompile(`\b(if|elif)\b`)
	callRe         = regexp.MustCompile(`\b([A-Za-z_$][\w$]*)\s*\(`)
	breakRe        = regexp.MustCompile(`\bbreak\b`)
	braceLoopRe    = regexp.MustCompile(`\b(for|while)\s*\(|\bdo\s*\{`)
	goLoopRe       = regexp.MustCompile(`\bfor\b`)
	controlRe      = regexp.MustCompile(`\b(if|for|while|do|switch|try|else)\b`)
	controlStartRe = regexp.MustCompile(`^(if|for|while|do|switch|try)\b`)
	ifRe           = regexp.MustCompile(`\bif\b`)
	braceDecide    = regexp.MustCompile(`\b(if|for|while|case|catch)\b|&&|\|\||\?[^:?;\n]*:`)
	ternaryRe      = regexp.MustCompile(`\?[^:?;\n]*:`)

	cFuncRe  = regexp.MustCompile(`([A-Za-z_][\w:~]*)\s*\((?:[^;{}()]|\([^()]*\))*\)\s*(?:const\s*)?(?:noexcept\s*)?(?:throws\s+[\w., ]+)?\{`)
	jsFuncRe = regexp.MustCompile(`\bfunction\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(|\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:function\b|\([^()]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)|(?m)^\s*(?:async\s+)?(?:static\s+)?([A-Za-z_$][\w$]*)\s*\([^()]*\)\s*\{`)
	goFuncRe = regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`)
)

// notCallable lists words that look like calls but are control syntax.
var notCallable = toSet("if", "for", "while", "switch", "catch", "return", "sizeof", "elif", "except",
	"with", "print", "function", "func", "def", "and", "or", "not", "in", "new", "typeof", "delete",
	"synchronized", "else", "do", "try", "foreach", "assert", "throw", "yield", "await", "lambda")

func scanSkeleton(blanked []byte, lang Language) skeleton {
	if lang == LangPython {
		return scanIndented(blanked)
	}
	return scanBraced(blanked, lang)
}

type pyLine struct {
	start, end int

	// indent is the visual indentation, lead the leading whitespace bytes
	indent, lead int
	text         string
}

func splitLines(blanked []byte) []pyLine {
	var lines []pyLine
	start := 0
	for i := 0; i <= len(blanked); i++ {
		if i == len(blanked) || blanked[i] == '\n' {
			raw := string(blanked[start:i])
			indent, lead := 0, 0
		ws:
			for _, c := range []byte(raw) {
				switch c {
				case ' ':
					indent++
				case '\t':
					indent += 4
				default:
					break ws
				}
				lead++
			}
			lines = append(lines, pyLine{start: start, end: i, indent: indent, lead: lead, text: strings.TrimSpace(raw)})
			start = i + 1
		}
	}
	return lines
}

// blockEnd returns the index of the last line belonging to the block opened at line i.
func blockEnd(lines []pyLine, i int) int {
	last := i
	for j := i + 1; j < len(lines); j++ {
		if lines[j].text == "" {
			continue
		}
		if lines[j].indent <= lines[i].indent {
			break
		}
		last = j
	}
	return last
}

func scanIndented(blanked []byte) skeleton {
	var sk skeleton
	lines := splitLines(blanked)
	text := string(blanked)

	type block struct {
		first, last int
		kind        string
	}
	var controls []block
	defNames := map[int]bool{}

	for i, l := range lines {
		if l.text == "" {
			continue
		}
		m := pyBlockRe.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}
		kind := m[2]
		last := blockEnd(lines, i)
		begin := l.start + l.lead
		switch kind {
		case "for", "while":
			sk.loops = append(sk.loops, loopNode{start: begin, end: lines[last].end, line: i + 1})
		case "def":
			if dm := pyDefRe.FindStringSubmatchIndex(l.text); dm != nil {
				name := l.text[dm[2]:dm[3]]
				defNames[begin+dm[2]] = true
				sk.funcs = append(sk.funcs, funcNode{
					name:      name,
					start:     begin,
					end:       lines[last].end,
					startLine: i + 1,
					endLine:   last + 1,
				})
			}
		}
		if kind != "def" && kind != "class" {
			controls = append(controls, block{first: i, last: last, kind: kind})
		}
	}

	for _, loc := range pyCompRe.FindAllStringIndex(text, -1) {
		sk.loops = append(sk.loops, loopNode{start: loc[0], end: loc[1], line: lineOf(blanked, loc[0])})
	}

	// nesting: count enclosing control blocks at each block header
	for i, c := range controls {
		depth := 1
		for j, o := range controls {
			if j != i && o.first < c.first && o.last >= c.first && lines[o.first].indent < lines[c.first].indent {
				depth++
			}
		}
		sk.maxNesting = max(sk.maxNesting, depth)
	}

	for _, loc := range breakRe.FindAllStringIndex(text, -1) {
		bl := lineOf(blanked, loc[0]) - 1
		guarded := false
		for _, c := range controls {
			if (c.kind == "if" || c.kind == "elif" || c.kind == "else") && c.first < bl && c.last >= bl {
				if enclosingLoopLine(lines, sk.loops, bl) < c.first {
					guarded = true
				}
			}
		}
		sk.breaks = append(sk.breaks, breakNode{pos: loc[0], guarded: guarded})
	}

	sk.calls = scanCalls(blanked, defNames)
	sk.conditionals = len(condRe.FindAllStringIndex(text, -1))
	sk.decisions = len(pyDecideRe.FindAllStringIndex(text, -1))
	return sk
}

// enclosingLoopLine is the 0-based header line of the innermost loop around line bl.
func enclosingLoopLine(lines []pyLine, loops []loopNode, bl int) int {
	pos := lines[bl].start + lines[bl].lead
	best := -1
	for _, l := range loops {
		if pos >= l.start && pos < l.end {
			best = max(best, l.line-1)
		}
	}
	return best
}

func scanBraced(blanked []byte, lang Language) skeleton {
	var sk skeleton
	text := string(blanked)

	loopRe := braceLoopRe
	if lang == LangGo {
		loopRe = goLoopRe
	}
	for _, loc := range loopRe.FindAllStringIndex(text, -1) {
		if strings.HasPrefix(text[loc[0]:], "while") && doWhileTail(blanked, loc[0]) {
			continue
		}
		end := statementEnd(blanked, loc[0], lang)
		sk.loops = append(sk.loops, loopNode{start: loc[0], end: end, line: lineOf(blanked, loc[0])})
	}

	defNames := map[int]bool{}
	for _, fn := range scanFuncs(blanked, lang) {
		defNames[fn.namePos] = true
		sk.funcs = append(sk.funcs, fn.funcNode)
	}

	type span struct{ start, end int }
	var controls []span
	for _, loc := range controlRe.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if word == "while" && doWhileTail(blanked, loc[0]) {
			continue
		}
		if word == "if" && precededByElse(blanked, loc[0]) {
			continue
		}
		controls = append(controls, span{loc[0], statementEnd(blanked, loc[0], lang)})
	}
	for i, c := range controls {
		depth := 1
		for j, o := range controls {
			if j != i && o.start < c.start && o.end > c.start {
				depth++
			}
		}
		sk.maxNesting = max(sk.maxNesting, depth)
	}

	for _, loc := range breakRe.FindAllStringIndex(text, -1) {
		loopStart := -1
		for _, l := range sk.loops {
			if loc[0] > l.start && loc[0] < l.end && l.start > loopStart {
				loopStart = l.start
			}
		}
		guarded := false
		for _, c := range controls {
			word := text[c.start:min(c.start+2, len(text))]
			if (word == "if" || word == "el") && c.start > loopStart && c.end > loc[0] && c.start < loc[0] {
				guarded = true
			}
		}
		sk.breaks = append(sk.breaks, breakNode{pos: loc[0], guarded: guarded})
	}

	sk.calls = scanCalls(blanked, defNames)
	sk.conditionals = len(ifRe.FindAllStringIndex(text, -1)) + len(ternaryRe.FindAllStringIndex(text, -1))
	sk.decisions = len(braceDecide.FindAllStringIndex(text, -1))
	return sk
}

type scannedFunc struct {
	funcNode
	namePos int
}

func scanFuncs(blanked []byte, lang Language) []scannedFunc {
	text := string(blanked)
	var re *regexp.Regexp
	switch lang {
	case LangJavaScript:
		re = jsFuncRe
	case LangGo:
		re = goFuncRe
	default:
		re = cFuncRe
	}

	var out []scannedFunc
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		namePos, nameEnd := -1, -1
		for g := 1; g*2+1 < len(m); g++ {
			if m[g*2] >= 0 {
				namePos, nameEnd = m[g*2], m[g*2+1]
				break
			}
		}
		if namePos < 0 {
			continue
		}
		name := text[namePos:nameEnd]
		if i := strings.LastIndex(name, "::"); i >= 0 {
			name = name[i+2:]
			namePos = nameEnd - len(name)
		}
		if notCallable[name] {
			continue
		}
		end := lineEnd(blanked, m[1])
		if open := bodyStart(blanked, m[1]-1); open >= 0 {
			end = matchClose(blanked, open, '{', '}') + 1
		}
		out = append(out, scannedFunc{
			funcNode: funcNode{
				name:      name,
				start:     m[0],
				end:       end,
				startLine: lineOf(blanked, m[0]),
				endLine:   lineOf(blanked, max(m[0], end-1)),
			},
			namePos: namePos,
		})
	}
	return out
}

func scanCalls(blanked []byte, defNames map[int]bool) []callNode {
	text := string(blanked)
	var calls []callNode
	for _, m := range callRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if defNames[m[2]] || notCallable[name] {
			continue
		}
		open := m[1] - 1
		closeAt := matchClose(blanked, open, '(', ')')
		calls = append(calls, callNode{name: name, pos: m[2], args: text[open+1 : max(open+1, closeAt)]})
	}
	return calls
}

// bodyStart finds the '{' opening a function body, or -1 when the body is a
// bare expression.
func bodyStart(blanked []byte, from int) int {
	depth := 0
	for i := from; i < len(blanked); i++ {
		switch blanked[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '{':
			if depth == 0 {
				return i
			}
		case ';':
			if depth == 0 {
				return -1
			}
		}
	}
	return -1
}

// statementEnd returns the offset just past the statement starting at pos:
// a keyword, an optional parenthesised header, then a braced block or a
// single statement.
func statementEnd(blanked []byte, pos int, lang Language) int {
	i := pos
	for i < len(blanked) && isWord(blanked[i]) {
		i++
	}
	i = skipSpace(blanked, i)
	if i < len(blanked) && blanked[i] == '(' {
		i = matchClose(blanked, i, '(', ')') + 1
	} else if lang == LangGo {
		for i < len(blanked) && blanked[i] != '{' && blanked[i] != '\n' {
			i++
		}
	}
	i = skipSpace(blanked, i)
	if i >= len(blanked) {
		return len(blanked)
	}
	if blanked[i] == '{' {
		return matchClose(blanked, i, '{', '}') + 1
	}
	if controlStartRe.Match(blanked[i:]) {
		return statementEnd(blanked, i, lang)
	}
	depth := 0
	for ; i < len(blanked); i++ {
		switch blanked[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth <= 0 {
				return i + 1
			}
		case '\n':
			if lang == LangGo || lang == LangJavaScript {
				if depth <= 0 {
					return i
				}
			}
		}
	}
	return len(blanked)
}

// matchClose returns the offset of the bracket closing the one at open, or
// the last offset when unbalanced.
func matchClose(blanked []byte, open int, o, c byte) int {
	depth := 0
	for i := open; i < len(blanked); i++ {
		switch blanked[i] {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(blanked) - 1
}

func doWhileTail(blanked []byte, pos int) bool {
	i := pos - 1
	for i >= 0 && (blanked[i] == ' ' || blanked[i] == '\t' || blanked[i] == '\n' || blanked[i] == '\r') {
		i--
	}
	return i >= 0 && blanked[i] == '}' && strings.Contains(string(blanked[max(0, i-2000):i]), "do")
}

func precededByElse(blanked []byte, pos int) bool {
	s := strings.TrimRight(string(blanked[max(0, pos-8):pos]), " \t\n\r")
	return strings.HasSuffix(s, "else")
}

func skipSpace(blanked []byte, i int) int {
	for i < len(blanked) && (blanked[i] == ' ' || blanked[i] == '\t' || blanked[i] == '\n' || blanked[i] == '\r') {
		i++
	}
	return i
}

func isWord(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lineOf returns the 1-based line number of offset pos.
func lineOf(blanked []byte, pos int) int {
	line := 1
	for i := 0; i < pos && i < len(blanked); i++ {
		if blanked[i] == '\n' {
			line++
		}
	}
	return line
}
