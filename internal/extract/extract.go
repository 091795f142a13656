// Package extract drives the pipeline: a second traversal pass over a
// parsed file which, for every string-producing expression, evaluates the
// candidate set, normalizes route params, expands HTML-embedded URLs,
// filters junk, and collects survivors into an ordered, deduplicated set.
package extract

import (
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/context"
	"github.com/sawzeeyy/w3av/internal/evaluator"
	"github.com/sawzeeyy/w3av/internal/filter"
	"github.com/sawzeeyy/w3av/internal/htmlurls"
	"github.com/sawzeeyy/w3av/internal/parser"
	"github.com/sawzeeyy/w3av/internal/routeparam"
	"github.com/sawzeeyy/w3av/internal/symtab"
)

// Options carries the full extraction configuration surface.
type Options struct {
	Placeholder      string
	IncludeTemplates bool
	MaxNodes         int
	MaxFileSize      int
	HTMLParser       htmlurls.Backend
	SkipSymbols      bool
	SkipAliases      bool
	Extensions       []string
	Context          *context.Bindings
	ContextPolicy    context.Policy
	Verbose          bool

	// OnCandidate, if set, is called for each survivor as it's discovered.
	OnCandidate func(string)
}

func (o Options) withDefaults() Options {
	if o.Placeholder == "" {
		o.Placeholder = "FUZZ"
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = 200000
	}
	if o.MaxFileSize == 0 {
		o.MaxFileSize = 2 << 20 // 2MiB
	}
	if o.HTMLParser == "" {
		o.HTMLParser = htmlurls.BackendNetHTML
	}
	if o.ContextPolicy == "" {
		o.ContextPolicy = context.PolicyMerge
	}
	return o
}

// Driver runs the full extraction pipeline over one source file at a time.
type Driver struct {
	opts Options
}

// New constructs a Driver from Options.
func New(opts Options) *Driver {
	return &Driver{opts: opts.withDefaults()}
}

// stringProducingKinds are the syntactic positions capable of producing a
// string value: template literals, string literals, binary expressions
// with at least one string operand, and call expressions on string-valued
// receivers.
var stringProducingKinds = map[string]bool{
	"string":            true,
	"template_string":   true,
	"binary_expression": true,
	"call_expression":   true,
}

// urlConsumingCallees are known URL-consuming function names (`fetch(x)`)
// whose arguments are evaluated even when the argument expression itself
// isn't one of stringProducingKinds.
var urlConsumingCallees = map[string]bool{
	"fetch": true, "open": true, "sendBeacon": true, "importScripts": true,
}

// urlConsumingProperties are member-expression property names that mark an
// assignment's right-hand side as URL-consuming.
var urlConsumingProperties = map[string]bool{
	"href": true, "location": true, "action": true, "src": true,
}

// urlConsumingMethods are method names with a known URL-bearing argument
// position (`setAttribute("href", x)`).
var urlConsumingMethods = map[string]bool{"setAttribute": true}

// Extract runs the pipeline over source, returning deduplicated candidates
// in first-discovery order. Parse failures and budget exhaustion degrade to
// partial results rather than errors.
func (d *Driver) Extract(source []byte) ([]string, error) {
	filterOpts := filter.Options{Extensions: d.opts.Extensions, Placeholder: d.opts.Placeholder}
	degraded := len(source) > d.opts.MaxFileSize
	skipSymbols := d.opts.SkipSymbols || d.opts.ContextPolicy == context.PolicyOnly

	tree, err := parser.Parse(source)
	if err != nil {
		// Parse failures proceed with whatever was recoverable; a tree that
		// failed to materialize at all leaves nothing to walk.
		slog.Warn("extract.parse_failed", "error", err)
		return []string{}, nil
	}
	defer tree.Close()

	var table *symtab.Table
	if skipSymbols || degraded {
		// Degraded mode: no symbol table is built, so identifiers and
		// member accesses (other than window.location) resolve to the
		// placeholder, since every lookup misses except for names
		// seeded from context below.
		table = symtab.New()
	} else {
		table = symtab.Build(tree.RootNode(), source, symtab.Options{SkipAliases: d.opts.SkipAliases})
	}
	d.seedContext(table)

	eval := evaluator.New(table, source, evaluator.Options{
		Placeholder:       d.opts.Placeholder,
		IncludeTemplates:  d.opts.IncludeTemplates,
		LocationOverrides: d.locationOverrides(),
	})

	return d.walk(tree.RootNode(), source, table, eval, filterOpts), nil
}

func (d *Driver) seedContext(table *symtab.Table) {
	if d.opts.Context == nil {
		return
	}
	context.Apply(table, d.opts.Context, d.opts.ContextPolicy)
}

func (d *Driver) locationOverrides() map[string]string {
	if d.opts.Context == nil {
		return nil
	}
	return d.opts.Context.LocationOverrides()
}

func (d *Driver) walk(root *tree_sitter.Node, source []byte, table *symtab.Table, eval *evaluator.Evaluator, filterOpts filter.Options) []string {
	seen := make(map[string]bool)
	out := []string{}

	emit := func(text string) {
		if text == "" || seen[text] {
			return
		}
		if trimmed, ok := filter.Filter(text, filterOpts); ok {
			seen[text] = true
			out = append(out, trimmed)
			if d.opts.OnCandidate != nil {
				d.opts.OnCandidate(trimmed)
			}
		}
	}

	process := func(res evaluator.Result) {
		for _, s := range res.Strings {
			normalized := routeparam.Normalize(s)
			if htmlurls.LooksLikeHTML(normalized) {
				attrs, err := htmlurls.Extract(normalized, d.opts.HTMLParser)
				if err == nil {
					for _, attr := range attrs {
						emit(routeparam.Normalize(attr))
					}
					continue
				}
				// Unparseable as HTML: fall through and let the filter
				// judge the raw candidate.
			}
			emit(normalized)
		}
	}

	text := func(n *tree_sitter.Node) string { return parser.NodeText(n, source) }

	w := &scopeWalker{
		process: process,
		eval:    eval,
		table:   table,
		text:    text,
		budget:  d.opts.MaxNodes,
	}
	w.walk(root, table.ProgramScope())

	return out
}

// scopeWalker re-derives, on a second pass over the same tree, the scope id
// each expression was evaluated under during symtab.Build, so identifier
// lookups inside nested functions/blocks resolve against their own scope
// rather than conservatively falling back to the program scope. It mirrors
// the scope-opening dispatch of symtab's own builder.walk (statement_block,
// catch_clause, function-like nodes each get a fresh scope, in the same
// depth-first order), so the scope ids it computes line up with the ids
// symtab.Table already assigned.
type scopeWalker struct {
	process   func(evaluator.Result)
	eval      *evaluator.Evaluator
	table     *symtab.Table
	text      func(*tree_sitter.Node) string
	budget    int
	visited   int
	nextScope int // mirrors the id symtab.Table.PushScope would hand out next
}

func (w *scopeWalker) walk(n *tree_sitter.Node, scope int) {
	if n == nil {
		return
	}
	if w.budget > 0 && w.visited >= w.budget {
		return
	}
	w.visited++
	if w.nextScope == 0 {
		w.nextScope = 1 // scope 0 is always the program scope
	}

	switch kind := n.Kind(); kind {
	case "assignment_expression":
		if isURLConsumingAssignment(n, w.text) {
			w.process(w.eval.Eval(n.ChildByFieldName("right"), scope))
		}
	case "call_expression":
		for _, arg := range urlConsumingCallArgs(n, w.text) {
			w.process(w.eval.Eval(arg, scope))
		}
		if isTopLevelStringPosition(n) {
			w.process(w.eval.Eval(n, scope))
		}
	case "statement_block", "catch_clause", "function_declaration",
		"generator_function_declaration", "function_expression",
		"generator_function", "arrow_function", "method_definition":
		scope = w.nextScope
		w.nextScope++
	default:
		if stringProducingKinds[kind] && kind != "call_expression" &&
			isTopLevelStringPosition(n) && !w.consumedDataLiteral(n) {
			w.process(w.eval.Eval(n, scope))
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if w.budget > 0 && w.visited >= w.budget {
			return
		}
		w.walk(n.Child(i), scope)
	}
}

// isTopLevelStringPosition reports whether n sits at a syntactic position
// whose value is meaningful on its own, rather than being a sub-expression
// that its parent will already evaluate as part of evaluating the parent.
func isTopLevelStringPosition(n *tree_sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Kind() {
	case "binary_expression", "template_substitution", "member_expression",
		"subscript_expression", "parenthesized_expression", "unary_expression",
		"sequence_expression", "ternary_expression":
		return false
	case "call_expression":
		// The callee belongs to the call evaluated as a whole; argument
		// positions are still meaningful on their own.
		fn := parent.ChildByFieldName("function")
		return fn == nil || fn.Id() != n.Id()
	}
	return true
}

// consumedDataLiteral reports whether n is a bare literal in a binding
// position (declarator initializer, object property value, array element,
// assignment right-hand side) whose bound name is referenced elsewhere in
// the file. Such a literal is data the symbol table already carries: it
// surfaces through the expressions that consume it (the "/api" feeding
// base+"/users" appears inside "/api/users", not on its own). A bound
// literal nobody reads is evaluated in place.
func (w *scopeWalker) consumedDataLiteral(n *tree_sitter.Node) bool {
	if !isDataLiteral(n) {
		return false
	}
	name, ok := dataLiteralBinding(n, w.text)
	if !ok {
		return false
	}
	return w.table.Used(name)
}

// isDataLiteral reports whether n is a plain string literal or a template
// literal with no substitutions. A pure value, as opposed to an expression
// that assembles one.
func isDataLiteral(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "string":
		return true
	case "template_string":
		for i := uint(0); i < n.ChildCount(); i++ {
			if c := n.Child(i); c != nil && c.Kind() == "template_substitution" {
				return false
			}
		}
		return true
	}
	return false
}

// dataLiteralBinding climbs from a literal through enclosing array/object
// nodes to the declarator or assignment that stores it, returning the bound
// identifier name.
func dataLiteralBinding(n *tree_sitter.Node, text func(*tree_sitter.Node) string) (string, bool) {
	cur := n
	parent := cur.Parent()
	for parent != nil {
		switch parent.Kind() {
		case "array", "object", "pair":
			cur, parent = parent, parent.Parent()
		case "variable_declarator":
			if name := parent.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				return text(name), true
			}
			return "", false
		case "assignment_expression":
			right := parent.ChildByFieldName("right")
			if right == nil || right.Id() != cur.Id() {
				return "", false
			}
			left := parent.ChildByFieldName("left")
			if left == nil {
				return "", false
			}
			switch left.Kind() {
			case "identifier":
				return text(left), true
			case "member_expression":
				if obj := left.ChildByFieldName("object"); obj != nil && obj.Kind() == "identifier" {
					return text(obj), true
				}
			}
			return "", false
		default:
			return "", false
		}
	}
	return "", false
}

func isURLConsumingAssignment(n *tree_sitter.Node, text func(*tree_sitter.Node) string) bool {
	left := n.ChildByFieldName("left")
	if left == nil || left.Kind() != "member_expression" {
		return false
	}
	prop := left.ChildByFieldName("property")
	return prop != nil && urlConsumingProperties[text(prop)]
}

// urlConsumingCallArgs returns the argument nodes of n sitting in
// URL-consuming call positions: a bare call to a known
// URL-consuming function, or a `setAttribute("href", x)`-shaped call.
func urlConsumingCallArgs(n *tree_sitter.Node, text func(*tree_sitter.Node) string) []*tree_sitter.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return nil
	}

	if fn.Kind() == "identifier" && urlConsumingCallees[text(fn)] {
		return namedArgs(args)
	}
	if fn.Kind() == "member_expression" {
		prop := fn.ChildByFieldName("property")
		if prop != nil && urlConsumingMethods[text(prop)] {
			all := namedArgs(args)
			if len(all) >= 2 {
				return all[1:2]
			}
		}
	}
	return nil
}

func namedArgs(args *tree_sitter.Node) []*tree_sitter.Node {
	out := make([]*tree_sitter.Node, 0, args.NamedChildCount())
	for i := uint(0); i < args.NamedChildCount(); i++ {
		out = append(out, args.NamedChild(i))
	}
	return out
}
