package evaluator

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/parser"
	"github.com/sawzeeyy/w3av/internal/symtab"
)

// declInit finds the initializer expression of `const <name> = ...;` (or
// `var`/plain assignment) by name, for feeding directly into Eval in tests.
func declInit(t *testing.T, root *tree_sitter.Node, source []byte, name string) *tree_sitter.Node {
	t.Helper()
	var found *tree_sitter.Node
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "variable_declarator" {
			if nameNode := n.ChildByFieldName("name"); nameNode != nil && parser.NodeText(nameNode, source) == name {
				found = n.ChildByFieldName("value")
				return false
			}
		}
		return true
	})
	if found == nil {
		t.Fatalf("no declarator named %q found", name)
	}
	return found
}

func sorted(ss []string) []string {
	out := append([]string{}, ss...)
	sort.Strings(out)
	return out
}

func eq(a, b []string) bool {
	return cmp.Equal(sorted(a), sorted(b))
}

// A URL assembled by + concatenation resolves fully.
func TestEvalBinaryConcat(t *testing.T) {
	source := []byte(`const base="/api"; const url=base+"/users";`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{})
	init := declInit(t, tree.RootNode(), source, "url")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"/api/users"}) {
		t.Errorf("got %v, want [/api/users]", res.Strings)
	}
}

// A template substitution fans out into resolved, {name}, and placeholder forms.
func TestEvalTemplateIncludeTemplates(t *testing.T) {
	source := []byte("const id=\"123\"; const u=`/users/${id}/profile`;")
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{IncludeTemplates: true, Placeholder: "FUZZ"})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	want := []string{"/users/123/profile", "/users/{id}/profile", "/users/FUZZ/profile"}
	if !eq(res.Strings, want) {
		t.Errorf("got %v, want %v", res.Strings, want)
	}
}

// window.location.origin falls back to its well-known default.
func TestEvalLocationOrigin(t *testing.T) {
	source := []byte(`const u = window.location.origin + "/api/users";`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{Placeholder: "FUZZ"})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"https://FUZZ/api/users"}) {
		t.Errorf("got %v, want [https://FUZZ/api/users]", res.Strings)
	}
}

// Deferred initializer evaluation extends to object-literal property
// values built from a non-literal expression:
// accessing such a property should evaluate the deferred expression rather
// than degrade to the placeholder.
func TestEvalDeferredObjectShapeProperty(t *testing.T) {
	source := []byte(`const base="/api"; const cfg={url: base + "/users"}; const u=cfg.url;`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{Placeholder: "FUZZ"})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"/api/users"}) {
		t.Errorf("got %v, want [/api/users]", res.Strings)
	}
}

// A context-supplied window.location override takes precedence over the
// well-known default.
func TestEvalLocationOverride(t *testing.T) {
	source := []byte(`const u = window.location.host + "/api";`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{
		Placeholder:       "FUZZ",
		LocationOverrides: map[string]string{"host": "example.com"},
	})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"example.com/api"}) {
		t.Errorf("got %v, want [example.com/api]", res.Strings)
	}
}

// An array of resolved elements joins into one candidate.
func TestEvalArrayJoin(t *testing.T) {
	source := []byte(`const p=["/api","/v2","/users"]; const u=p.join("");`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"/api/v2/users"}) {
		t.Errorf("got %v, want [/api/v2/users]", res.Strings)
	}
}

// Chained .replace calls apply left to right.
func TestEvalReplaceChain(t *testing.T) {
	source := []byte(`const t="/api/{env}/{r}"; const u=t.replace("{env}","prod").replace("{r}","users");`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"/api/prod/users"}) {
		t.Errorf("got %v, want [/api/prod/users]", res.Strings)
	}
}

func TestEvalUnresolvedCallDegradesToPlaceholder(t *testing.T) {
	source := []byte(`const u = someFunc("/x");`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{Placeholder: "FUZZ"})
	init := declInit(t, tree.RootNode(), source, "u")

	res := eval.Eval(init, table.ProgramScope())
	if !eq(res.Strings, []string{"FUZZ"}) {
		t.Errorf("got %v, want [FUZZ]", res.Strings)
	}
}

func TestEvalCyclicAlias(t *testing.T) {
	source := []byte(`let a = b; let b = a;`)
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	table := symtab.Build(tree.RootNode(), source, symtab.Options{})
	eval := New(table, source, Options{Placeholder: "FUZZ"})

	res := eval.Eval(declInit(t, tree.RootNode(), source, "a"), table.ProgramScope())
	if !eq(res.Strings, []string{"FUZZ"}) {
		t.Errorf("cyclic alias should degrade to placeholder, got %v", res.Strings)
	}
}
