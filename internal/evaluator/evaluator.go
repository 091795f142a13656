// Package evaluator reduces an expression node to a bounded set of string
// values, using a symtab.Table for identifier lookup. Dispatch is keyed on
// node kind; identifier and member resolution recurse through the table
// under cartesian fan-out, recursion-depth, and cycle guards.
package evaluator

import (
	"strconv"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/parser"
	"github.com/sawzeeyy/w3av/internal/strlit"
	"github.com/sawzeeyy/w3av/internal/symtab"
)

// Options controls evaluation bounds and defaults.
type Options struct {
	Placeholder      string // default "FUZZ"
	MaxDepth         int    // recursion bound, default 64
	MaxFanout        int    // cardinality bound, default 32
	IncludeTemplates bool

	// LocationOverrides installs context-supplied values for window.location
	// properties, taking
	// precedence over the well-known defaults in locationDefault.
	LocationOverrides map[string]string
}

func (o Options) withDefaults() Options {
	if o.Placeholder == "" {
		o.Placeholder = "FUZZ"
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 64
	}
	if o.MaxFanout <= 0 {
		o.MaxFanout = 32
	}
	return o
}

// Result is the set of candidate strings produced for one expression node.
// Strings is never empty: unresolvable expressions resolve to the
// placeholder rather than an empty set. Degraded marks that a
// recursion-depth or fan-out bound collapsed the set.
type Result struct {
	Strings   []string
	Templated bool
	Degraded  bool
}

// Evaluator evaluates expression nodes against one symtab.Table.
type Evaluator struct {
	Table  *symtab.Table
	Source []byte
	Opts   Options
}

// New returns an Evaluator with defaults applied.
func New(table *symtab.Table, source []byte, opts Options) *Evaluator {
	return &Evaluator{Table: table, Source: source, Opts: opts.withDefaults()}
}

// evalCtx carries the recursion bound and a visited-symbol set so cyclic
// aliases (`a = b; b = a`) terminate rather than loop forever.
type evalCtx struct {
	depth   int
	visited map[string]bool
}

func newEvalCtx() evalCtx { return evalCtx{visited: make(map[string]bool)} }

func (c evalCtx) child() evalCtx {
	nv := make(map[string]bool, len(c.visited))
	for k := range c.visited {
		nv[k] = true
	}
	return evalCtx{depth: c.depth + 1, visited: nv}
}

func scopeKey(scope int, name string) string {
	return name + "@" + strconv.Itoa(scope)
}

// Eval reduces node, evaluated in lexical scope, to its candidate set.
func (e *Evaluator) Eval(node *tree_sitter.Node, scope int) Result {
	return e.eval(node, scope, newEvalCtx())
}

func (e *Evaluator) eval(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	if node == nil {
		return e.placeholderResult()
	}
	if ctx.depth > e.Opts.MaxDepth {
		return e.degradedResult()
	}
	switch node.Kind() {
	case "string":
		return Result{Strings: []string{strlit.DecodeLiteral(e.text(node))}}
	case "template_string":
		return e.evalTemplate(node, scope, ctx)
	case "identifier":
		return e.evalIdentifier(node, scope, ctx)
	case "binary_expression":
		return e.evalBinary(node, scope, ctx)
	case "member_expression":
		return e.evalMember(node, scope, ctx)
	case "subscript_expression":
		return e.evalSubscript(node, scope, ctx)
	case "call_expression":
		return e.evalCall(node, scope, ctx)
	case "ternary_expression":
		return e.evalTernary(node, scope, ctx)
	case "assignment_expression":
		return e.eval(node.ChildByFieldName("right"), scope, ctx.child())
	case "unary_expression":
		return e.eval(node.ChildByFieldName("argument"), scope, ctx.child())
	case "sequence_expression":
		return e.eval(node.ChildByFieldName("right"), scope, ctx.child())
	case "parenthesized_expression":
		return e.eval(firstNamedChild(node), scope, ctx.child())
	case "number", "true", "false", "null", "undefined":
		return Result{Strings: []string{e.text(node)}}
	default:
		// Anything else: unresolved.
		return e.placeholderResult()
	}
}

func (e *Evaluator) text(n *tree_sitter.Node) string { return parser.NodeText(n, e.Source) }

func (e *Evaluator) placeholderResult() Result {
	return Result{Strings: []string{e.Opts.Placeholder}, Templated: true}
}

func (e *Evaluator) degradedResult() Result {
	return Result{Strings: []string{e.Opts.Placeholder}, Templated: true, Degraded: true}
}

// capOrDegrade applies the fan-out bound.
func (e *Evaluator) capOrDegrade(strs []string, templated bool) Result {
	if len(strs) > e.Opts.MaxFanout {
		return e.degradedResult()
	}
	if len(strs) == 0 {
		return e.placeholderResult()
	}
	return Result{Strings: dedupe(strs), Templated: templated}
}

func (e *Evaluator) evalIdentifier(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	name := e.text(node)
	key := scopeKey(scope, name)
	if ctx.visited[key] {
		return e.placeholderResult()
	}
	sym, ok := e.Table.Lookup(scope, name)
	if !ok {
		return e.placeholderResult()
	}
	if len(sym.Value.Strings) == 0 && len(sym.Inits) == 0 {
		return e.placeholderResult()
	}

	nctx := ctx.child()
	nctx.visited[key] = true

	var all []string
	templated := false
	all = append(all, sym.Value.Strings...)
	for _, init := range sym.Inits {
		r := e.eval(init, sym.ScopeID, nctx)
		all = append(all, r.Strings...)
		templated = templated || r.Templated
	}
	return e.capOrDegrade(all, templated)
}

func (e *Evaluator) evalBinary(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	opNode := node.ChildByFieldName("operator")
	if opNode == nil || e.text(opNode) != "+" {
		// Only `+` concatenates; any other operator is unresolved.
		return e.placeholderResult()
	}
	left := e.eval(node.ChildByFieldName("left"), scope, ctx.child())
	right := e.eval(node.ChildByFieldName("right"), scope, ctx.child())
	combined, degraded := cartesian(left.Strings, right.Strings, e.Opts.MaxFanout)
	if degraded {
		return e.degradedResult()
	}
	return e.capOrDegrade(combined, left.Templated || right.Templated)
}

func (e *Evaluator) evalTernary(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	cons := e.eval(node.ChildByFieldName("consequence"), scope, ctx.child())
	alt := e.eval(node.ChildByFieldName("alternative"), scope, ctx.child())
	union := append(append([]string{}, cons.Strings...), alt.Strings...)
	return e.capOrDegrade(union, cons.Templated || alt.Templated)
}
