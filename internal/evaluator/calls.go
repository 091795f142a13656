package evaluator

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// evalCall handles the closed catalogue of string-producing methods:
// concat, join, replace. Any other call's return value is unresolved and
// degrades to the placeholder rather than synthesizing a value.
func (e *Evaluator) evalCall(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "member_expression" {
		return e.placeholderResult()
	}
	receiver := fn.ChildByFieldName("object")
	methodNode := fn.ChildByFieldName("property")
	if receiver == nil || methodNode == nil {
		return e.placeholderResult()
	}

	args := namedChildren(node.ChildByFieldName("arguments"))
	switch e.text(methodNode) {
	case "concat":
		return e.evalConcatCall(receiver, args, scope, ctx)
	case "join":
		return e.evalJoinCall(receiver, args, scope, ctx)
	case "replace":
		return e.evalReplaceCall(receiver, args, scope, ctx)
	default:
		return e.placeholderResult()
	}
}

func (e *Evaluator) evalConcatCall(receiver *tree_sitter.Node, args []*tree_sitter.Node, scope int, ctx evalCtx) Result {
	acc := e.eval(receiver, scope, ctx.child()).Strings
	templated := false
	for _, a := range args {
		r := e.eval(a, scope, ctx.child())
		templated = templated || r.Templated
		combined, degraded := cartesian(acc, r.Strings, e.Opts.MaxFanout)
		if degraded {
			return e.degradedResult()
		}
		acc = combined
	}
	return e.capOrDegrade(acc, templated)
}

// evalJoinCall implements `<array>.join(sep)`: elements that
// all resolve are joined for every choice of separator; unresolved elements
// substitute the placeholder for that position.
func (e *Evaluator) evalJoinCall(receiver *tree_sitter.Node, args []*tree_sitter.Node, scope int, ctx evalCtx) Result {
	elems, ok := e.arrayElements(receiver, scope, ctx)
	if !ok {
		return e.placeholderResult()
	}
	seps := []string{","}
	if len(args) > 0 {
		if r := e.eval(args[0], scope, ctx.child()); len(r.Strings) > 0 {
			seps = r.Strings
		}
	}

	var out []string
	templated := false
	for _, sep := range seps {
		acc := []string{""}
		for i, el := range elems {
			templated = templated || el.Templated
			pieces := el.Strings
			if i > 0 {
				prefixed := make([]string, len(pieces))
				for j, p := range pieces {
					prefixed[j] = sep + p
				}
				pieces = prefixed
			}
			combined, degraded := cartesian(acc, pieces, e.Opts.MaxFanout)
			if degraded {
				return e.degradedResult()
			}
			acc = combined
		}
		out = append(out, acc...)
	}
	return e.capOrDegrade(out, templated)
}

func (e *Evaluator) arrayElements(node *tree_sitter.Node, scope int, ctx evalCtx) ([]Result, bool) {
	arr, arrScope := e.resolveToArrayNode(node, scope, ctx)
	if arr == nil {
		return nil, false
	}
	var elems []Result
	for i := uint(0); i < arr.ChildCount(); i++ {
		c := arr.Child(i)
		if c == nil || !c.IsNamed() {
			continue
		}
		elems = append(elems, e.eval(c, arrScope, ctx.child()))
	}
	return elems, true
}

func (e *Evaluator) resolveToArrayNode(node *tree_sitter.Node, scope int, ctx evalCtx) (*tree_sitter.Node, int) {
	switch node.Kind() {
	case "array":
		return node, scope
	case "identifier":
		sym, ok := e.Table.Lookup(scope, e.text(node))
		if !ok {
			return nil, 0
		}
		for _, init := range sym.Inits {
			if init.Kind() == "array" {
				return init, sym.ScopeID
			}
		}
	}
	return nil, 0
}

// evalReplaceCall evaluates `<receiver>.replace(pattern, replacement)`.
// Replacement strings are treated as literal text: no `$1`-style
// back-reference expansion, even when pattern is a global regex.
func (e *Evaluator) evalReplaceCall(receiver *tree_sitter.Node, args []*tree_sitter.Node, scope int, ctx evalCtx) Result {
	recv := e.eval(receiver, scope, ctx.child())
	if len(args) < 2 {
		return recv
	}
	patternNode := args[0]
	replRes := e.eval(args[1], scope, ctx.child())
	if len(replRes.Strings) == 0 {
		return recv
	}
	replacement := replRes.Strings[0]

	if patternNode.Kind() == "regex" {
		return e.evalRegexReplace(recv, patternNode, replacement)
	}

	pat := e.eval(patternNode, scope, ctx.child())
	if pat.Templated && len(pat.Strings) == 1 && pat.Strings[0] == e.Opts.Placeholder {
		// Unresolved pattern: receiver unchanged.
		return recv
	}

	var out []string
	for _, base := range recv.Strings {
		for _, p := range pat.Strings {
			out = append(out, strings.Replace(base, p, replacement, 1))
		}
	}
	return e.capOrDegrade(out, recv.Templated)
}

func (e *Evaluator) evalRegexReplace(recv Result, regexNode *tree_sitter.Node, replacement string) Result {
	patternNode := regexNode.ChildByFieldName("pattern")
	if patternNode == nil {
		return recv
	}
	flags := ""
	if flagsNode := regexNode.ChildByFieldName("flags"); flagsNode != nil {
		flags = e.text(flagsNode)
	}
	re, err := regexp.Compile(e.text(patternNode))
	if err != nil {
		return recv
	}
	global := strings.Contains(flags, "g")

	var out []string
	for _, base := range recv.Strings {
		if global {
			// Replacement text is literal; no $1 back-reference expansion.
			out = append(out, re.ReplaceAllLiteralString(base, replacement))
		} else {
			out = append(out, replaceFirstMatch(re, base, replacement))
		}
	}
	return e.capOrDegrade(out, recv.Templated)
}

func replaceFirstMatch(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
