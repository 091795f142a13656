package symtab

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/parser"
	"github.com/sawzeeyy/w3av/internal/strlit"
)

// Options controls how Build constructs the table.
type Options struct {
	// SkipAliases disables the template-aliasing hint.
	SkipAliases bool
	// Policy governs how re-declarations and re-assignments in the same
	// scope combine with a symbol's existing value.
	Policy Policy
}

// Build walks root once, recording every binding it can classify into a
// fresh scope tree.
func Build(root *tree_sitter.Node, source []byte, opts Options) *Table {
	t := New()
	t.SkipAliases = opts.SkipAliases
	b := &builder{table: t, source: source, policy: opts.Policy}
	b.walk(root, t.ProgramScope())
	return t
}

type builder struct {
	table  *Table
	source []byte
	policy Policy
}

func (b *builder) text(n *tree_sitter.Node) string { return parser.NodeText(n, b.source) }

// walk descends the tree, opening a new scope for functions, blocks, and
// catch clauses, and recording bindings along the way.
func (b *builder) walk(n *tree_sitter.Node, scope int) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "lexical_declaration":
		b.bindDeclarators(n, scope, false)
		return
	case "variable_declaration":
		b.bindDeclarators(n, scope, true)
		return
	case "assignment_expression":
		b.bindAssignment(n, scope)
		return
	case "function_declaration", "generator_function_declaration",
		"function_expression", "generator_function", "arrow_function", "method_definition":
		b.bindFunction(n, scope)
		return
	case "catch_clause":
		b.bindCatch(n, scope)
		return
	case "identifier":
		b.table.MarkUse(b.text(n))
		return
	case "statement_block":
		blockScope := b.table.PushScope(scope, ScopeBlock)
		for i := uint(0); i < n.ChildCount(); i++ {
			b.walk(n.Child(i), blockScope)
		}
		return
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		b.walk(n.Child(i), scope)
	}
}

func (b *builder) bindCatch(n *tree_sitter.Node, scope int) {
	catchScope := b.table.PushScope(scope, ScopeCatch)
	param := n.ChildByFieldName("parameter")
	if param != nil && param.Kind() == "identifier" {
		b.table.DeclareUnresolved(catchScope, b.text(param))
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || (param != nil && param.Kind() == "identifier" && child.Id() == param.Id()) {
			continue
		}
		b.walk(child, catchScope)
	}
}

// bindFunction binds the function's own name (if any) into the enclosing
// scope, pushes a new function scope for its parameters and body, and binds
// each parameter as unresolved.
func (b *builder) bindFunction(n *tree_sitter.Node, scope int) {
	// Function declarations are visible throughout the enclosing
	// function/program scope.
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		b.table.DeclareUnresolved(scope, b.text(nameNode))
	}

	fnScope := b.table.PushScope(scope, ScopeFunction)
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.ChildCount(); i++ {
			p := params.Child(i)
			if p == nil || !p.IsNamed() {
				continue
			}
			if name := b.paramName(p); name != "" {
				b.table.DeclareUnresolved(fnScope, name)
			}
			// Default values can hold arbitrary expressions, nested
			// functions included; they belong to the function scope.
			if p.Kind() == "assignment_pattern" {
				b.walk(p.ChildByFieldName("right"), fnScope)
			} else if p.Kind() == "object_pattern" || p.Kind() == "array_pattern" {
				b.walk(p, fnScope)
			}
		}
	} else if param := n.ChildByFieldName("parameter"); param != nil && param.Kind() == "identifier" {
		// Arrow functions with a single unparenthesized parameter.
		b.table.DeclareUnresolved(fnScope, b.text(param))
	}

	if body := n.ChildByFieldName("body"); body != nil {
		b.walk(body, fnScope)
	}
}

func (b *builder) paramName(p *tree_sitter.Node) string {
	switch p.Kind() {
	case "identifier":
		return b.text(p)
	case "assignment_pattern":
		if left := p.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
			return b.text(left)
		}
	case "rest_pattern":
		if p.ChildCount() > 0 {
			last := p.Child(p.ChildCount() - 1)
			if last != nil && last.Kind() == "identifier" {
				return b.text(last)
			}
		}
	}
	return ""
}

// bindDeclarators handles both lexical_declaration (const/let) and
// variable_declaration (var) nodes, each containing one or more
// variable_declarator children.
func (b *builder) bindDeclarators(n *tree_sitter.Node, scope int, isVar bool) {
	for i := uint(0); i < n.ChildCount(); i++ {
		decl := n.Child(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			// Destructuring patterns aren't tracked as bindings, but the
			// pattern and initializer are still walked so nested functions
			// open their scopes in the same order as the extraction walk.
			b.walk(nameNode, scope)
			b.walk(decl.ChildByFieldName("value"), scope)
			continue
		}
		name := b.text(nameNode)
		valueNode := decl.ChildByFieldName("value")
		val, init := b.classifyInit(valueNode, scope)

		var sym *Symbol
		if isVar {
			sym = b.table.DeclareVar(scope, name, val, init, b.policy)
		} else {
			sym = b.table.DeclareLexical(scope, name, val, init, b.policy)
		}
		if !b.table.SkipAliases {
			if alias, ok := aliasOf(valueNode, b.source); ok {
				sym.Alias = alias
			}
		}
		if valueNode != nil {
			b.walk(valueNode, scope)
		}
	}
}

// bindAssignment handles plain `x = ...` and property `x.y = ...` assignments.
func (b *builder) bindAssignment(n *tree_sitter.Node, scope int) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		name := b.text(left)
		val, init := b.classifyInit(right, scope)
		sym := b.table.DeclareLexical(scope, name, val, init, b.policy)
		if !b.table.SkipAliases {
			if alias, ok := aliasOf(right, b.source); ok {
				sym.Alias = alias
			}
		}
	case "member_expression":
		b.bindPropertyAssignment(left, right, scope)
		b.walk(left, scope)
	default:
		b.walk(left, scope)
	}

	b.walk(right, scope)
}

func (b *builder) bindPropertyAssignment(left, right *tree_sitter.Node, scope int) {
	obj := left.ChildByFieldName("object")
	prop := left.ChildByFieldName("property")
	if obj == nil || prop == nil || obj.Kind() != "identifier" || prop.Kind() != "property_identifier" {
		return
	}
	objName := b.text(obj)
	sym, ok := b.table.Lookup(scope, objName)
	if !ok {
		sym = b.table.DeclareLexical(scope, objName, Value{Shape: NewObjectShape()}, nil, PolicyOverride)
	}
	if sym.Value.Shape == nil {
		sym.Value.Shape = NewObjectShape()
	}
	val, init := b.classifyInit(right, scope)
	if init != nil {
		val = Value{Init: init, InitScope: scope}
	}
	sym.Value.Shape.Set(b.text(prop), val)
}

// classifyInit returns an eagerly-computed Value for literals (strings,
// non-interpolated templates, object literals) it can resolve cheaply at
// build time, or a zero Value plus the node itself for deferred evaluation
// by the evaluator otherwise.
func (b *builder) classifyInit(node *tree_sitter.Node, scope int) (Value, *tree_sitter.Node) {
	if node == nil {
		return Value{Unresolved: true}, nil
	}
	switch node.Kind() {
	case "string":
		return Value{Strings: []string{strlit.DecodeLiteral(b.text(node))}}, nil
	case "template_string":
		if !hasTemplateSubstitution(node) {
			return Value{Strings: []string{decodeStaticTemplate(node, b.source)}}, nil
		}
		return Value{}, node
	case "object":
		return Value{Shape: b.buildObjectShape(node, scope)}, nil
	default:
		return Value{}, node
	}
}

func hasTemplateSubstitution(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == "template_substitution" {
			return true
		}
	}
	return false
}

func decodeStaticTemplate(node *tree_sitter.Node, source []byte) string {
	var b strings.Builder
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && (c.Kind() == "string_fragment" || c.Kind() == "escape_sequence") {
			b.WriteString(strlit.Decode(parser.NodeText(c, source)))
		}
	}
	return b.String()
}

// buildObjectShape recursively constructs an Object Shape from an object
// literal node. Computed keys that reduce to a literal string
// are used statically; otherwise the pair is dropped.
func (b *builder) buildObjectShape(node *tree_sitter.Node, scope int) *ObjectShape {
	shape := NewObjectShape()
	for i := uint(0); i < node.ChildCount(); i++ {
		pair := node.Child(i)
		if pair == nil || pair.Kind() != "pair" {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		valNode := pair.ChildByFieldName("value")
		if keyNode == nil || valNode == nil {
			continue
		}
		key, ok := b.resolveKey(keyNode)
		if !ok {
			continue
		}
		val, init := b.classifyInit(valNode, scope)
		if init != nil {
			// Nested non-literal property values defer to the evaluator,
			// the same way a Symbol's Inits do.
			val = Value{Init: init, InitScope: scope}
		}
		shape.Set(key, val)
	}
	return shape
}

func (b *builder) resolveKey(keyNode *tree_sitter.Node) (string, bool) {
	switch keyNode.Kind() {
	case "property_identifier", "identifier":
		return b.text(keyNode), true
	case "string":
		return strlit.DecodeLiteral(b.text(keyNode)), true
	case "computed_property_name":
		inner := keyNode.NamedChild(uint(0))
		if inner != nil && inner.Kind() == "string" {
			return strlit.DecodeLiteral(b.text(inner)), true
		}
		return "", false
	}
	return "", false
}

func aliasOf(node *tree_sitter.Node, source []byte) (string, bool) {
	if node != nil && node.Kind() == "identifier" {
		return parser.NodeText(node, source), true
	}
	return "", false
}
