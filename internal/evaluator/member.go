package evaluator

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/symtab"
)

// evalMember evaluates `a.b`: the window.location special case first,
// then generic object-shape lookup.
func (e *Evaluator) evalMember(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	if prop, ok := e.isLocationExpr(node); ok {
		if override, ok := e.Opts.LocationOverrides[prop]; ok {
			return Result{Strings: []string{override}}
		}
		if res, ok := e.locationDefault(prop); ok {
			return res
		}
	}
	obj := node.ChildByFieldName("object")
	propNode := node.ChildByFieldName("property")
	if obj == nil || propNode == nil {
		return e.placeholderResult()
	}
	return e.evalPropertyAccess(obj, e.text(propNode), scope, ctx)
}

// evalSubscript evaluates `a["b"]`: evaluate the
// index expression to a set of candidate keys and fan out property lookups.
func (e *Evaluator) evalSubscript(node *tree_sitter.Node, scope int, ctx evalCtx) Result {
	obj := node.ChildByFieldName("object")
	indexNode := node.ChildByFieldName("index")
	if obj == nil || indexNode == nil {
		return e.placeholderResult()
	}
	idx := e.eval(indexNode, scope, ctx.child())

	var all []string
	templated := false
	for _, key := range idx.Strings {
		r := e.evalPropertyAccess(obj, key, scope, ctx)
		all = append(all, r.Strings...)
		templated = templated || r.Templated
	}
	return e.capOrDegrade(all, templated)
}

func (e *Evaluator) evalPropertyAccess(objNode *tree_sitter.Node, propName string, scope int, ctx evalCtx) Result {
	shape, ok := e.resolveShape(objNode, scope, ctx)
	if !ok {
		return e.placeholderResult()
	}
	val, ok := shape.Get(propName)
	if !ok || val.Shape != nil || val.Unresolved {
		return e.placeholderResult()
	}
	if val.Init != nil {
		// Deferred nested property value, e.g. `{url: base + "/x"}`.
		return e.eval(val.Init, val.InitScope, ctx.child())
	}
	if len(val.Strings) == 0 {
		return e.placeholderResult()
	}
	return e.capOrDegrade(append([]string{}, val.Strings...), false)
}

// resolveShape walks objNode to an Object Shape, following identifiers and
// nested member expressions.
func (e *Evaluator) resolveShape(node *tree_sitter.Node, scope int, ctx evalCtx) (*symtab.ObjectShape, bool) {
	if node == nil {
		return nil, false
	}
	switch node.Kind() {
	case "identifier":
		sym, ok := e.Table.Lookup(scope, e.text(node))
		if !ok || sym.Value.Shape == nil {
			return nil, false
		}
		return sym.Value.Shape, true
	case "member_expression":
		obj := node.ChildByFieldName("object")
		propNode := node.ChildByFieldName("property")
		if obj == nil || propNode == nil {
			return nil, false
		}
		parentShape, ok := e.resolveShape(obj, scope, ctx)
		if !ok {
			return nil, false
		}
		val, ok := parentShape.Get(e.text(propNode))
		if !ok || val.Shape == nil {
			return nil, false
		}
		return val.Shape, true
	}
	return nil, false
}

// isLocationExpr reports whether node accesses a property of `location` or
// `window.location`, returning the property name.
func (e *Evaluator) isLocationExpr(node *tree_sitter.Node) (string, bool) {
	obj := node.ChildByFieldName("object")
	propNode := node.ChildByFieldName("property")
	if obj == nil || propNode == nil {
		return "", false
	}
	if obj.Kind() == "identifier" && e.text(obj) == "location" {
		return e.text(propNode), true
	}
	if obj.Kind() == "member_expression" {
		innerObj := obj.ChildByFieldName("object")
		innerProp := obj.ChildByFieldName("property")
		if innerObj != nil && innerProp != nil &&
			innerObj.Kind() == "identifier" && e.text(innerObj) == "window" &&
			innerProp.Kind() == "property_identifier" && e.text(innerProp) == "location" {
			return e.text(propNode), true
		}
	}
	return "", false
}

// locationDefault returns the well-known default for a window.location
// property
func (e *Evaluator) locationDefault(prop string) (Result, bool) {
	ph := e.Opts.Placeholder
	switch prop {
	case "origin":
		return Result{Strings: []string{"https://" + ph}, Templated: true}, true
	case "host", "hostname":
		return Result{Strings: []string{ph}, Templated: true}, true
	case "protocol":
		return Result{Strings: []string{"https:"}}, true
	case "pathname":
		return Result{Strings: []string{"/" + ph}, Templated: true}, true
	case "href":
		return Result{Strings: []string{"https://" + ph + "/"}, Templated: true}, true
	case "search", "hash":
		return Result{Strings: []string{""}}, true
	case "port":
		return Result{Strings: []string{""}}, true
	}
	return Result{}, false
}
