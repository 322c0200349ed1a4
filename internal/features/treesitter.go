//go:build cgo

package features

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// parsers pools tree-sitter parsers; a parser is not safe for concurrent use.
var parsers = sync.Pool{
	New: func() any { return sitter.NewParser() },
}

// StructuralAvailable reports whether tree-sitter parsing is compiled in.
func StructuralAvailable() bool {
	return true
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// parse returns the syntax tree root, or an error when the language is
// unsupported or the tree carries syntax errors.
func parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	p := parsers.Get().(*sitter.Parser)
	defer parsers.Put(p)

	p.SetLanguage(tsLang)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse error: syntax errors in %s source", lang)
	}
	return root, nil
}

// structuralSkeleton walks the syntax tree. ok is false when parsing failed
// and the caller should fall back to scanning.
func structuralSkeleton(ctx context.Context, source []byte, lang Language) (skeleton, bool) {
	root, err := parse(ctx, source, lang)
	if err != nil {
		return skeleton{}, false
	}

	w := &walker{
		src:       source,
		lang:      lang,
		loops:     toSet(GetLoopNodeTypes(lang)...),
		functions: toSet(GetFunctionNodeTypes(lang)...),
		calls:     toSet(GetCallNodeTypes(lang)...),
		decisions: toSet(GetDecisionNodeTypes(lang)...),
		nesting:   toSet(GetNestingNodeTypes(lang)...),
	}
	w.walk(root, 0)
	return w.sk, true
}

type walker struct {
	src  []byte
	lang Language
	sk   skeleton

	loops, functions, calls, decisions, nesting map[string]bool
}

func (w *walker) walk(node *sitter.Node, nesting int) {
	if node == nil {
		return
	}
	typ := node.Type()

	if w.loops[typ] {
		w.sk.loops = append(w.sk.loops, loopNode{
			start: int(node.StartByte()),
			end:   int(node.EndByte()),
			line:  int(node.StartPoint().Row) + 1,
		})
	}

	if w.functions[typ] {
		if name := functionName(node, w.src, w.lang); name != "" {
			w.sk.funcs = append(w.sk.funcs, funcNode{
				name:      name,
				start:     int(node.StartByte()),
				end:       int(node.EndByte()),
				startLine: int(node.StartPoint().Row) + 1,
				endLine:   int(node.EndPoint().Row) + 1,
			})
		}
	}

	if w.calls[typ] {
		if name := calleeName(node, w.src); name != "" {
			args := ""
			if a := node.ChildByFieldName("arguments"); a != nil {
				args = a.Content(w.src)
			}
			w.sk.calls = append(w.sk.calls, callNode{name: name, pos: int(node.StartByte()), args: args})
		}
	}

	switch typ {
	case "break_statement":
		if guarded, exitsLoop := w.breakContext(node); exitsLoop {
			w.sk.breaks = append(w.sk.breaks, breakNode{pos: int(node.StartByte()), guarded: guarded})
		}
	case "if_statement", "elif_clause", "conditional_expression", "ternary_expression":
		w.sk.conditionals++
	}

	if w.decisions[typ] {
		if typ != "binary_expression" && typ != "boolean_operator" || IsBooleanOperator(node, w.src, w.lang) {
			w.sk.decisions++
		}
	}

	if w.nesting[typ] {
		nesting++
		w.sk.maxNesting = max(w.sk.maxNesting, nesting)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), nesting)
	}
}

// breakContext walks up from a break to the loop it leaves. guarded is set
// when a conditional sits in between; exitsLoop is false when the break
// belongs to a switch instead.
func (w *walker) breakContext(node *sitter.Node) (guarded, exitsLoop bool) {
	for p := node.Parent(); p != nil; p = p.Parent() {
		typ := p.Type()
		switch {
		case w.loops[typ]:
			return guarded, true
		case w.functions[typ]:
			return guarded, false
		}
		switch typ {
		case "if_statement", "elif_clause", "else_clause", "conditional_expression":
			guarded = true
		case "switch_statement", "expression_switch_statement", "type_switch_statement",
			"switch_expression", "switch_block", "select_statement":
			if w.lang != LangPython {
				return guarded, false
			}
		}
	}
	return guarded, false
}

// functionName resolves the declared name of a function node. Anonymous
// functions take the name of the variable they are bound to.
func functionName(node *sitter.Node, src []byte, lang Language) string {
	if lang == LangCPP {
		return declaratorName(node.ChildByFieldName("declarator"), src)
	}
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(src)
	}
	if p := node.Parent(); p != nil {
		switch p.Type() {
		case "variable_declarator":
			if n := p.ChildByFieldName("name"); n != nil {
				return n.Content(src)
			}
		case "assignment_expression":
			if n := p.ChildByFieldName("left"); n != nil {
				return calleeName(n, src)
			}
		}
	}
	return ""
}

// declaratorName follows a C++ declarator chain down to its identifier.
func declaratorName(n *sitter.Node, src []byte) string {
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			return n.Content(src)
		case "qualified_identifier":
			n = n.ChildByFieldName("name")
		default:
			n = n.ChildByFieldName("declarator")
		}
	}
	return ""
}

// calleeName returns the final identifier of a call target: fib in fib(n),
// helper in self.helper(x), dfs in this.dfs(node.left).
func calleeName(n *sitter.Node, src []byte) string {
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "property_identifier", "type_identifier":
			return n.Content(src)
		}
		var next *sitter.Node
		for _, field := range []string{"name", "property", "attribute", "field", "function"} {
			if c := n.ChildByFieldName(field); c != nil {
				next = c
				break
			}
		}
		n = next
	}
	return ""
}

// GetLoopNodeTypes returns the node types that represent loops for a language.
func GetLoopNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"for_statement"}
	case LangJavaScript:
		return []string{"for_statement", "for_in_statement", "while_statement", "do_statement"}
	case LangPython:
		return []string{
			"for_statement",
			"while_statement",
			"list_comprehension",
			"dictionary_comprehension",
			"set_comprehension",
			"generator_expression",
		}
	case LangJava:
		return []string{"for_statement", "enhanced_for_statement", "while_statement", "do_statement"}
	case LangCPP:
		return []string{"for_statement", "for_range_loop", "while_statement", "do_statement"}
	default:
		return nil
	}
}

// GetFunctionNodeTypes returns the node types that represent functions for a language.
func GetFunctionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangJavaScript:
		return []string{"function_declaration", "function_expression", "function", "arrow_function", "method_definition", "generator_function_declaration"}
	case LangPython:
		return []string{"function_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangCPP:
		return []string{"function_definition"}
	default:
		return nil
	}
}

// GetCallNodeTypes returns the node types that represent calls for a language.
func GetCallNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"call"}
	case LangJava:
		return []string{"method_invocation"}
	case LangGo, LangJavaScript, LangCPP:
		return []string{"call_expression"}
	default:
		return nil
	}
}

// GetDecisionNodeTypes returns the node types that contribute to cyclomatic complexity.
func GetDecisionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{
			"if_statement",
			"for_statement",
			"expression_case",    // case in switch
			"type_case",          // case in type switch
			"communication_case", // case in select
			"binary_expression",  // for && and ||
		}
	case LangJavaScript:
		return []string{
			"if_statement",
			"for_statement",
			"for_in_statement",
			"while_statement",
			"do_statement",
			"switch_case",
			"catch_clause",
			"ternary_expression",
			"binary_expression", // for && and ||
		}
	case LangPython:
		return []string{
			"if_statement",
			"elif_clause",
			"for_statement",
			"while_statement",
			"except_clause",
			"with_statement",
			"boolean_operator",         // and, or
			"conditional_expression",   // ternary
			"list_comprehension",       // for clause
			"dictionary_comprehension", // for clause
			"set_comprehension",        // for clause
			"generator_expression",     // for clause
		}
	case LangJava:
		return []string{
			"if_statement",
			"for_statement",
			"enhanced_for_statement",
			"while_statement",
			"do_statement",
			"switch_block_statement_group",
			"catch_clause",
			"ternary_expression",
			"binary_expression", // for && and ||
		}
	case LangCPP:
		return []string{
			"if_statement",
			"for_statement",
			"for_range_loop",
			"while_statement",
			"do_statement",
			"case_statement",
			"catch_clause",
			"conditional_expression",
			"binary_expression", // for && and ||
		}
	default:
		return nil
	}
}

// IsBooleanOperator checks if a binary expression node is && or ||.
func IsBooleanOperator(node *sitter.Node, source []byte, lang Language) bool {
	if node.Type() != "binary_expression" && node.Type() != "boolean_operator" {
		return false
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}

		if lang == LangPython {
			// Python uses 'and' and 'or' keywords
			if child.Type() == "and" || child.Type() == "or" {
				return true
			}
			continue
		}
		content := string(source[child.StartByte():child.EndByte()])
		if content == "&&" || content == "||" {
			return true
		}
	}

	return false
}

// GetNestingNodeTypes returns node types that increase block nesting depth.
func GetNestingNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{
			"if_statement",
			"for_statement",
			"select_statement",
			"type_switch_statement",
			"expression_switch_statement",
		}
	case LangJavaScript:
		return []string{
			"if_statement",
			"for_statement",
			"for_in_statement",
			"while_statement",
			"do_statement",
			"switch_statement",
			"try_statement",
		}
	case LangPython:
		return []string{
			"if_statement",
			"for_statement",
			"while_statement",
			"try_statement",
			"with_statement",
		}
	case LangJava:
		return []string{
			"if_statement",
			"for_statement",
			"enhanced_for_statement",
			"while_statement",
			"do_statement",
			"switch_expression",
			"try_statement",
		}
	case LangCPP:
		return []string{
			"if_statement",
			"for_statement",
			"for_range_loop",
			"while_statement",
			"do_statement",
			"switch_statement",
			"try_statement",
		}
	default:
		return nil
	}
}
