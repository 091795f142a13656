package evaluator

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// cartesian computes the Cartesian product a[i]+b[j], capping the result's
// cardinality. Empty operands are treated as a
// single empty-string choice so concatenation with an unresolved side still
// produces something (the placeholder, supplied by the caller).
func cartesian(a, b []string, cap int) (out []string, degraded bool) {
	if len(a) == 0 {
		a = []string{""}
	}
	if len(b) == 0 {
		b = []string{""}
	}
	if len(a)*len(b) > cap {
		return nil, true
	}
	out = make([]string, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, x+y)
		}
	}
	return out, false
}

// dedupe removes repeats, preserving first-discovery order.
func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func firstNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(uint(0))
}

// namedChildren returns a node's named children, e.g. the argument
// expressions of an `arguments` node (skipping commas/parens).
func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// mostInformativeName returns the right-most identifier-ish token under
// node, used to label a template placeholder for a member/call expression
// substitution.
func mostInformativeName(node *tree_sitter.Node, source []byte) string {
	var best string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "identifier" || n.Kind() == "property_identifier" {
			best = string(source[n.StartByte():n.EndByte()])
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return best
}
