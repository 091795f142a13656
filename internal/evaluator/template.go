package evaluator

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/strlit"
)

// evalTemplate computes the cross-product of decoded static chunks
// interleaved with each interpolation's evaluation.
func (e *Evaluator) evalTemplate(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	acc := []string{""}
	templated := false

	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "string_fragment", "escape_sequence":
			lit := strlit.Decode(e.text(c))
			for j := range acc {
				acc[j] += lit
			}
		case "template_substitution":
			inner := firstNamedChild(c)
			sub := e.eval(inner, scope, ctx.child())
			branches := e.templateBranches(inner, scope, sub)
			templated = true
			combined, degraded := cartesian(acc, branches, e.Opts.MaxFanout)
			if degraded {
				return e.degradedResult()
			}
			acc = combined
		}
	}
	return e.capOrDegrade(acc, templated)
}

// templateBranches returns the resolved value(s) for one substitution and,
// when include-templates is on, a `{name}` token form and the placeholder
// form as additional parallel candidates.
func (e *Evaluator) templateBranches(inner *tree_sitter.Node, scope int, sub Result) []string {
	resolved := sub.Strings
	isPlaceholderOnly := len(resolved) == 1 && resolved[0] == e.Opts.Placeholder && sub.Templated
	if isPlaceholderOnly {
		resolved = nil
	}

	if !e.Opts.IncludeTemplates {
		if len(resolved) > 0 {
			return resolved
		}
		return []string{e.Opts.Placeholder}
	}

	label := e.templateLabel(inner, scope)
	branches := append([]string{}, resolved...)
	branches = append(branches, "{"+label+"}", e.Opts.Placeholder)
	return dedupe(branches)
}

// templateLabel picks the "most informative identifier" for a template
// token, preferring an alias hint recorded by symtab over the
// substitution's own identifier name, unless skip-aliases
// is in effect (symtab never populates Alias in that case).
func (e *Evaluator) templateLabel(node *tree_sitter.Node, scope int) string {
	if node == nil {
		return "value"
	}
	if node.Kind() == "identifier" {
		name := e.text(node)
		if sym, ok := e.Table.Lookup(scope, name); ok && sym.Alias != "" {
			return sym.Alias
		}
		return name
	}
	if name := mostInformativeName(node, e.Source); name != "" {
		return name
	}
	return "value"
}
