// Package symtab builds a scope-aware symbol table: a single AST pass
// recording variable bindings, object-literal shapes, and property
// mutations under lexical scopes, with hoisting, so the evaluator can do
// proper identifier lookup instead of consulting a single flat map.
package symtab

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Policy controls how a new value is combined with a symbol's existing one.
type Policy int

const (
	// PolicyMerge extends the declared value set.
	PolicyMerge Policy = iota
	// PolicyOverride replaces it.
	PolicyOverride
)

// ScopeKind records what introduced a scope.
type ScopeKind int

const (
	ScopeProgram ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeCatch
)

// Value is a tagged union: a symbol's value is one of strings, shape, or
// unresolved.
type Value struct {
	Strings    []string
	Shape      *ObjectShape
	Unresolved bool

	// Init and InitScope defer evaluation of an object-literal property
	// whose own value isn't a literal the builder can classify eagerly,
	// e.g. `{url: base + "/x"}`. The evaluator resolves Init in InitScope
	// the same way it resolves a Symbol's Inits.
	Init      *tree_sitter.Node
	InitScope int
}

// IsEmpty reports whether v carries no information at all (neither strings,
// a shape, the unresolved marker, nor a deferred Init), i.e. the zero Value.
func (v Value) IsEmpty() bool {
	return len(v.Strings) == 0 && v.Shape == nil && !v.Unresolved && v.Init == nil
}

// ObjectShape is the recursive property-name to Value mapping tracked for
// an object literal.
type ObjectShape struct {
	Props map[string]Value
}

// NewObjectShape returns an empty shape.
func NewObjectShape() *ObjectShape {
	return &ObjectShape{Props: make(map[string]Value)}
}

// Set installs a property value, overwriting any prior one under the same key.
func (s *ObjectShape) Set(key string, v Value) {
	if s.Props == nil {
		s.Props = make(map[string]Value)
	}
	s.Props[key] = v
}

// Get returns a property's value and whether it was recorded.
func (s *ObjectShape) Get(key string) (Value, bool) {
	v, ok := s.Props[key]
	return v, ok
}

// Symbol is a named binding. Inits holds initializer
// or assignment right-hand-side nodes whose evaluation is deferred to the
// evaluator, one
// entry per merged assignment, in declaration order.
type Symbol struct {
	Name    string
	ScopeID int
	Value   Value
	Inits   []*tree_sitter.Node

	// Alias records the single-identifier RHS name of `x = y`, a hint used
	// when rendering template placeholders. Empty unless
	// skip-aliases is off and the RHS was a bare identifier.
	Alias string
}

type scopeNode struct {
	parent int
	kind   ScopeKind
}

// Table is the scope tree plus bound symbols for one parsed file. Scopes are
// stored in an arena indexed by integer id "arena allocation
// with integer indices rather than cyclic owned references."
type Table struct {
	scopes      []scopeNode
	symbols     []map[string]*Symbol
	uses        map[string]int
	SkipAliases bool
}

// New returns a table containing only the program scope (id 0).
func New() *Table {
	t := &Table{uses: make(map[string]int)}
	t.scopes = append(t.scopes, scopeNode{parent: -1, kind: ScopeProgram})
	t.symbols = append(t.symbols, make(map[string]*Symbol))
	return t
}

// MarkUse records that name appeared in a value position (not as a
// declaration target). Uses are counted by name rather than by resolved
// symbol so that hoisted references ahead of their declaration still count.
func (t *Table) MarkUse(name string) {
	t.uses[name]++
}

// Used reports whether name was referenced anywhere in a value position.
// The extraction driver treats a literal initializer of an unused name as a
// candidate in its own right; a used name's literal surfaces at its use
// sites instead.
func (t *Table) Used(name string) bool {
	return t.uses[name] > 0
}

// ProgramScope returns the root scope id.
func (t *Table) ProgramScope() int { return 0 }

// PushScope creates a new child scope and returns its id. A symbol's scope id
// never changes after creation; scopes themselves are
// append-only for the same reason.
func (t *Table) PushScope(parent int, kind ScopeKind) int {
	id := len(t.scopes)
	t.scopes = append(t.scopes, scopeNode{parent: parent, kind: kind})
	t.symbols = append(t.symbols, make(map[string]*Symbol))
	return id
}

// ParentScope returns a scope's parent id, or (-1, false) for the program scope.
func (t *Table) ParentScope(id int) (int, bool) {
	if id < 0 || id >= len(t.scopes) {
		return -1, false
	}
	p := t.scopes[id].parent
	return p, p >= 0
}

// ScopeKindOf reports what kind of scope id is.
func (t *Table) ScopeKindOf(id int) ScopeKind {
	if id < 0 || id >= len(t.scopes) {
		return ScopeProgram
	}
	return t.scopes[id].kind
}

// Lookup walks the scope chain from scopeID upward.
func (t *Table) Lookup(scopeID int, name string) (*Symbol, bool) {
	for id := scopeID; id >= 0 && id < len(t.scopes); id = t.scopes[id].parent {
		if sym, ok := t.symbols[id][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// nearestFunctionScope climbs from scopeID to the nearest enclosing function
// or program scope, for `var` hoisting.
func (t *Table) nearestFunctionScope(scopeID int) int {
	for id := scopeID; id >= 0 && id < len(t.scopes); id = t.scopes[id].parent {
		if t.scopes[id].kind == ScopeFunction || t.scopes[id].kind == ScopeProgram {
			return id
		}
	}
	return t.ProgramScope()
}

// bind installs or updates a binding under policy, optionally hoisting to the
// nearest function scope (var semantics).
func (t *Table) bind(scopeID int, name string, val Value, init *tree_sitter.Node, policy Policy, hoistToFunction bool) *Symbol {
	target := scopeID
	if hoistToFunction {
		target = t.nearestFunctionScope(scopeID)
	}
	if sym, ok := t.symbols[target][name]; ok {
		switch policy {
		case PolicyOverride:
			sym.Value = val
			if init != nil {
				sym.Inits = []*tree_sitter.Node{init}
			} else {
				sym.Inits = nil
			}
		default:
			sym.Value = mergeValues(sym.Value, val)
			if init != nil {
				sym.Inits = append(sym.Inits, init)
			}
		}
		return sym
	}
	sym := &Symbol{Name: name, ScopeID: target, Value: val}
	if init != nil {
		sym.Inits = []*tree_sitter.Node{init}
	}
	t.symbols[target][name] = sym
	return sym
}

// DeclareLexical binds a const/let declarator or plain identifier assignment.
func (t *Table) DeclareLexical(scopeID int, name string, val Value, init *tree_sitter.Node, policy Policy) *Symbol {
	return t.bind(scopeID, name, val, init, policy, false)
}

// DeclareVar binds a var declarator, hoisted to the nearest function scope.
func (t *Table) DeclareVar(scopeID int, name string, val Value, init *tree_sitter.Node, policy Policy) *Symbol {
	return t.bind(scopeID, name, val, init, policy, true)
}

// DeclareUnresolved binds a function name or parameter: "their identity
// matters for alias detection, not their value".
func (t *Table) DeclareUnresolved(scopeID int, name string) *Symbol {
	return t.bind(scopeID, name, Value{Unresolved: true}, nil, PolicyOverride, false)
}

// Seed installs a context-injected binding directly, always at the
// program scope.
func (t *Table) Seed(name string, val Value, policy Policy) *Symbol {
	return t.bind(t.ProgramScope(), name, val, nil, policy, false)
}

func mergeValues(a, b Value) Value {
	if a.Shape != nil || b.Shape != nil {
		merged := NewObjectShape()
		if a.Shape != nil {
			for k, v := range a.Shape.Props {
				merged.Set(k, v)
			}
		}
		if b.Shape != nil {
			for k, v := range b.Shape.Props {
				merged.Set(k, v)
			}
		}
		return Value{Shape: merged}
	}
	strs := dedupAppend(a.Strings, b.Strings...)
	return Value{Strings: strs, Unresolved: a.Unresolved || (b.Unresolved && len(strs) == 0)}
}

func dedupAppend(base []string, add ...string) []string {
	seen := make(map[string]bool, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, s := range base {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
