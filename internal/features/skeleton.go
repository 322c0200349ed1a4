package features

import (
	"regexp"
	"sort"
	"strings"
)

// skeleton is the control-flow outline a builder (tree-sitter or scan)
// recovers from a source. Offsets index both the original and blanked text.
type skeleton struct {
	loops        []loopNode
	funcs        []funcNode
	calls        []callNode
	breaks       []breakNode
	conditionals int
	decisions    int
	maxNesting   int
}

type loopNode struct {
	start, end int
	line       int
}

type funcNode struct {
	name               string
	start, end         int
	startLine, endLine int
}

type callNode struct {
	name string
	pos  int
	args string
}

type breakNode struct {
	pos int

	// guarded is set when the break sits under a conditional inside its loop
	guarded bool
}

var (
	// halvingRe spots a loop range that shrinks or grows geometrically.
	halvingRe = regexp.MustCompile(`\b(mid|middle)\s*:?=|\w+\s*(//|/|>>)=\s*[12]\b|\w+\s*\*=\s*2\b|\w+\s*<<=\s*1\b|\(\s*\w+\s*\+\s*\w+\s*\)\s*(//|/|>>)\s*[12]\b|\w+\s*=\s*\w+\s*(//|/)\s*2\b|\w+\s*=\s*\w+\s*\*\s*2\b|\w+\s*=\s*\w+\s*>>\s*1\b`)

	// halvingArgRe spots a recursive call over half of its input.
	halvingArgRe = regexp.MustCompile(`\bmid\b|\bmiddle\b|(//|/)\s*2\b|>>\s*1\b|\[\s*:\s*\w+\s*\]|\[\s*\w+\s*:\s*\]`)

	// traversalArgRe spots a recursive call that follows a structural link.
	traversalArgRe = regexp.MustCompile(`\.(left|right|next|children|child)\b|->(left|right|next)\b|\bneighbou?rs?\b|\bnei\b|\bchild\b|\bnxt\b|\bkid\b|\badj\w*\s*\[|\bgraph\s*\[`)

	// growthCallRe spots a container insertion.
	growthCallRe = regexp.MustCompile(`\.(append|push|push_back|emplace_back|add|put|insert|offer|appendleft|push_front|unshift|addLast|addFirst|setdefault|set)\s*\(|\bappend\s*\(|\bheappush\s*\(`)

	// containerDeclRe captures variables bound to a map, set or list.
	containerDeclRe = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*(?::=|=)\s*(?:\{\s*\}|dict\s*\(|defaultdict|Counter\s*\(|set\s*\(|make\(\s*map|map\[|new\s+\w*(?:Map|Set)\b|\[\s*\]|list\s*\()`)

	// typedDeclRe captures variables declared with a container type.
	typedDeclRe = regexp.MustCompile(`\b(?:Map|HashMap|TreeMap|Set|HashSet|unordered_map|unordered_set|map|set)\s*<[^;{}]*>\s*&?\s*([A-Za-z_]\w*)`)

	// stepRe captures variables stepped by one.
	stepRe = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*(\+\+|--|\+=\s*1\b|-=\s*1\b)|(\+\+|--)\s*([A-Za-z_]\w*)|\b([A-Za-z_]\w*)\s*=\s*([A-Za-z_]\w*)\s*([+-])\s*1\b`)

	// forHeaderRe finds the start of a counted-loop header in brace languages.
	forHeaderRe = regexp.MustCompile(`\bfor\b`)
)

// assemble derives the FeatureBag from a skeleton and the blanked source.
func assemble(sk skeleton, blanked []byte, lang Language, mode Mode) FeatureBag {
	bag := FeatureBag{
		Language: lang,
		Mode:     mode,
		Parsed:   true,
	}

	text := string(blanked)
	markers := scanMarkers(text)
	for _, m := range BuiltinMarkers {
		if m.Container && markers[m.Name] {
			bag.Containers = append(bag.Containers, m.Name)
		}
	}
	bag.Markers = sortedKeys(markers)
	sort.Strings(bag.Containers)

	bag.Tokens = tokenRe.FindAllString(text, -1)
	bag.Identifiers = identifiers(blanked)
	bag.LineCount = countLines(text)
	bag.DuplicateLines = duplicateGroups(text)
	bag.Conditionals = sk.conditionals
	bag.MaxNesting = sk.maxNesting
	bag.CyclomaticComplexity = sk.decisions + 1

	loops := append([]loopNode(nil), sk.loops...)
	sort.SliceStable(loops, func(i, j int) bool {
		if loops[i].start != loops[j].start {
			return loops[i].start < loops[j].start
		}
		return loops[i].end > loops[j].end
	})
	parents := enclosing(loops)

	bag.LoopCount = len(loops)
	bag.Loops = make([]Loop, len(loops))
	for i, l := range loops {
		own := ownText(blanked, loops, i)
		loop := Loop{Line: l.line, Depth: 1, Halving: halvingRe.MatchString(own)}
		for _, b := range sk.breaks {
			if b.pos < l.start || b.pos >= l.end || innermostLoop(loops, b.pos) != i {
				continue
			}
			loop.EarlyExit = true
			if !b.guarded {
				loop.Bounded = true
			}
		}
		parentLinear := 0
		if p := parents[i]; p >= 0 {
			loop.Depth = bag.Loops[p].Depth + 1
			parentLinear = bag.Loops[p].LinearDepth
		}
		if loop.Depth < 2 {
			loop.Bounded = false
		}
		loop.LinearDepth = parentLinear
		if !loop.Halving && !loop.Bounded {
			loop.LinearDepth++
		}
		if loop.Halving {
			bag.HalvingLoop = true
			if parentLinear > 0 {
				bag.HalvingInLinear = true
			}
		}
		bag.MaxLoopDepth = max(bag.MaxLoopDepth, loop.Depth)
		bag.MaxLinearDepth = max(bag.MaxLinearDepth, loop.LinearDepth)
		bag.Loops[i] = loop
	}

	var recursive []funcNode
	bag.Functions, bag.Recursion, recursive = recursion(sk, loops, markers["memo"])
	bag.ContainerGrowth = containerGrowth(text, loops, recursive)
	bag.AdvancingIndices, bag.OpposingIndices = advancingIndices(blanked, loops, lang)
	return bag
}

// enclosing returns, for loops sorted by start, the index of the innermost
// enclosing loop or -1.
func enclosing(loops []loopNode) []int {
	parents := make([]int, len(loops))
	var stack []int
	for i, l := range loops {
		for len(stack) > 0 && loops[stack[len(stack)-1]].end <= l.start {
			stack = stack[:len(stack)-1]
		}
		parents[i] = -1
		if len(stack) > 0 {
			parents[i] = stack[len(stack)-1]
		}
		stack = append(stack, i)
	}
	return parents
}

// innermostLoop returns the index of the innermost loop containing pos, or -1.
func innermostLoop(loops []loopNode, pos int) int {
	best := -1
	for i, l := range loops {
		if pos >= l.start && pos < l.end {
			if best < 0 || l.start >= loops[best].start {
				best = i
			}
		}
	}
	return best
}

// ownText is the text of loop i with every nested loop wiped out.
func ownText(blanked []byte, loops []loopNode, i int) string {
	l := loops[i]
	buf := make([]byte, l.end-l.start)
	copy(buf, blanked[l.start:l.end])
	for j, inner := range loops {
		if j == i || inner.start < l.start || inner.end > l.end || (inner.start == l.start && inner.end == l.end) {
			continue
		}
		for k := inner.start; k < inner.end; k++ {
			buf[k-l.start] = ' '
		}
	}
	return string(buf)
}

// recursion summarizes self-calls and returns the spans of recursive functions.
func recursion(sk skeleton, loops []loopNode, memo bool) ([]Function, Recursion, []funcNode) {
	var rec Recursion
	var recursive []funcNode
	funcs := make([]Function, 0, len(sk.funcs))
	for _, f := range sk.funcs {
		fn := Function{
			Name:      f.name,
			StartLine: f.startLine,
			EndLine:   f.endLine,
			Lines:     f.endLine - f.startLine + 1,
		}
		for _, c := range sk.calls {
			if c.name != f.name || c.pos < f.start || c.pos >= f.end {
				continue
			}
			fn.SelfCalls++
			if halvingArgRe.MatchString(c.args) {
				rec.Halving = true
			}
			if traversalArgRe.MatchString(c.args) {
				rec.Traversal = true
			}
			if l := innermostLoop(loops, c.pos); l >= 0 && loops[l].start >= f.start {
				rec.InLoop = true
			}
		}
		if fn.SelfCalls > 0 {
			recursive = append(recursive, f)
			rec.Present = true
			rec.MaxCallsPerBody = max(rec.MaxCallsPerBody, fn.SelfCalls)
		}
		funcs = append(funcs, fn)
	}
	sort.SliceStable(funcs, func(i, j int) bool { return funcs[i].StartLine < funcs[j].StartLine })
	rec.Memoized = rec.Present && memo
	return funcs, rec, recursive
}

// containerGrowth reports whether a container is inserted into, or a declared
// map/set/list is written by key, inside a loop or a recursive function.
func containerGrowth(text string, loops []loopNode, recursive []funcNode) bool {
	vars := map[string]bool{}
	for _, m := range containerDeclRe.FindAllStringSubmatch(text, -1) {
		vars[m[1]] = true
	}
	for _, m := range typedDeclRe.FindAllStringSubmatch(text, -1) {
		vars[m[1]] = true
	}

	var regions []string
	for _, l := range loops {
		regions = append(regions, text[l.start:l.end])
	}
	for _, f := range recursive {
		regions = append(regions, text[f.start:f.end])
	}

	for _, r := range regions {
		if growthCallRe.MatchString(r) {
			return true
		}
		for _, v := range sortedKeys(vars) {
			if keyedWrite(v).MatchString(r) {
				return true
			}
		}
	}
	return false
}

func keyedWrite(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\[[^\]\n]*\]\s*(\+|-|\|)?=[^=]`)
}

// advancingIndices collects variables stepped by one inside loop bodies.
// Counted-loop headers are ignored so nested for loops are not mistaken for
// independently moving pointers.
func advancingIndices(blanked []byte, loops []loopNode, lang Language) ([]string, bool) {
	if len(loops) == 0 {
		return nil, false
	}
	buf := make([]byte, len(blanked))
	copy(buf, blanked)
	if lang.braceDelimited() {
		for _, loc := range forHeaderRe.FindAllIndex(buf, -1) {
			end := headerEnd(buf, loc[1])
			for k := loc[0]; k < end; k++ {
				if buf[k] != '\n' {
					buf[k] = ' '
				}
			}
		}
	}

	up, down := map[string]bool{}, map[string]bool{}
	for _, l := range loops {
		body := string(buf[l.start:l.end])
		for _, m := range stepRe.FindAllStringSubmatch(body, -1) {
			switch {
			case m[1] != "":
				if strings.HasPrefix(m[2], "+") {
					up[m[1]] = true
				} else {
					down[m[1]] = true
				}
			case m[4] != "":
				if m[3] == "++" {
					up[m[4]] = true
				} else {
					down[m[4]] = true
				}
			case m[5] != "" && m[5] == m[6]:
				if m[7] == "+" {
					up[m[5]] = true
				} else {
					down[m[5]] = true
				}
			}
		}
	}

	all := map[string]bool{}
	for v := range up {
		all[v] = true
	}
	for v := range down {
		all[v] = true
	}
	opposing := false
	for u := range up {
		for d := range down {
			if u != d {
				opposing = true
			}
		}
	}
	return sortedKeys(all), opposing
}

// headerEnd returns the offset where a counted-loop header ends: the first
// '{' at paren depth zero, or the end of the line.
func headerEnd(buf []byte, from int) int {
	depth := 0
	for i := from; i < len(buf); i++ {
		switch buf[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '{':
			if depth <= 0 {
				return i
			}
		case '\n':
			if depth <= 0 {
				return i
			}
		}
	}
	return len(buf)
}

func scanMarkers(text string) map[string]bool {
	found := map[string]bool{}
	for _, m := range BuiltinMarkers {
		if m.Regex.MatchString(text) {
			found[m.Name] = true
		}
	}
	return found
}

func identifiers(blanked []byte) []string {
	set := map[string]bool{}
	for _, loc := range identRe.FindAllIndex(blanked, -1) {
		if loc[0] > 0 {
			prev := blanked[loc[0]-1]
			if prev >= '0' && prev <= '9' {
				continue
			}
		}
		if loc[1] < len(blanked) && (blanked[loc[1]] == '"' || blanked[loc[1]] == '\'') {
			continue
		}
		word := string(blanked[loc[0]:loc[1]])
		if reserved[word] {
			continue
		}
		set[word] = true
	}
	return sortedKeys(set)
}

func countLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// duplicateGroups counts distinct non-trivial lines that occur more than once.
func duplicateGroups(text string) int {
	seen := map[string]int{}
	for _, line := range strings.Split(text, "\n") {
		l := strings.Join(strings.Fields(line), " ")
		if len(l) < 12 || strings.Trim(l, "{}()[];: ") == "" {
			continue
		}
		seen[l]++
	}
	groups := 0
	for _, n := range seen {
		if n > 1 {
			groups++
		}
	}
	return groups
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
