package extract

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sawzeeyy/w3av/internal/context"
)

func sortedStrs(ss []string) []string {
	out := append([]string{}, ss...)
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	return cmp.Equal(sortedStrs(a), sortedStrs(b))
}

// A URL assembled by + concatenation resolves fully.
func TestExtractBinaryConcat(t *testing.T) {
	d := New(Options{})
	got, err := d.Extract([]byte(`const base="/api"; const url=base+"/users";`))
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"/api/users"}) {
		t.Errorf("got %v, want [/api/users]", got)
	}
}

// A template substitution fans out into resolved, {name}, and placeholder forms.
func TestExtractTemplateIncludeTemplates(t *testing.T) {
	d := New(Options{IncludeTemplates: true})
	got, err := d.Extract([]byte("const id=\"123\"; const u=`/users/${id}/profile`;"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/users/123/profile", "/users/{id}/profile", "/users/FUZZ/profile"}
	if !equalSets(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// window.location.origin falls back to its well-known default.
func TestExtractLocationOrigin(t *testing.T) {
	d := New(Options{})
	got, err := d.Extract([]byte(`const u = window.location.origin + "/api/users";`))
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"https://FUZZ/api/users"}) {
		t.Errorf("got %v, want [https://FUZZ/api/users]", got)
	}
}

// An array of resolved elements joins into one candidate.
func TestExtractArrayJoin(t *testing.T) {
	d := New(Options{})
	got, err := d.Extract([]byte(`const p=["/api","/v2","/users"]; const u=p.join("");`))
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"/api/v2/users"}) {
		t.Errorf("got %v, want [/api/v2/users]", got)
	}
}

// Chained .replace calls apply left to right.
func TestExtractReplaceChain(t *testing.T) {
	d := New(Options{})
	got, err := d.Extract([]byte(`const t="/api/{env}/{r}"; const u=t.replace("{env}","prod").replace("{r}","users");`))
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"/api/prod/users"}) {
		t.Errorf("got %v, want [/api/prod/users]", got)
	}
}

// MIME types, bare schemes, dotted paths, and namespace URIs are rejected.
func TestExtractJunkFiltering(t *testing.T) {
	d := New(Options{})
	source := []byte(`"application/json"; "https://"; "user.profile.name"; "http://www.w3.org/2000/svg"; "/api/v2/users";`)
	got, err := d.Extract(source)
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"/api/v2/users"}) {
		t.Errorf("got %v, want [/api/v2/users] only", got)
	}
}

// A context binding under the override policy wins over the file value.
func TestExtractContextOverride(t *testing.T) {
	bindings := context.New()
	bindings.Set("t", "/api")
	d := New(Options{
		IncludeTemplates: true,
		Context:          bindings,
		ContextPolicy:    context.PolicyOverride,
	})
	got, err := d.Extract([]byte("const t=\"/v2\"; const u=`${t}/users`;"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(got, "/api/users") {
		t.Errorf("got %v, want a set containing /api/users (context override applied)", got)
	}
	if contains(got, "/v2/users") {
		t.Errorf("got %v, file-derived /v2/users should not survive an override policy", got)
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func TestExtractRouteParamNormalization(t *testing.T) {
	d := New(Options{})
	got, err := d.Extract([]byte(`const u = "/users/:id/profile/[section]";`))
	if err != nil {
		t.Fatal(err)
	}
	if !equalSets(got, []string{"/users/{id}/profile/{section}"}) {
		t.Errorf("got %v, want [/users/{id}/profile/{section}]", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	d := New(Options{})
	source := []byte(`const base="/api"; const url=base+"/users"; const another="/users/:id";`)
	first, err := d.Extract(source)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Extract(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("non-deterministic output lengths: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("non-deterministic order at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

// A "window.location.host=example.com" context binding installs an
// override into the evaluator's window.location resolver.
func TestExtractContextLocationOverride(t *testing.T) {
	bindings := context.New()
	bindings.Set("window.location.host", "example.com")
	d := New(Options{Context: bindings, ContextPolicy: context.PolicyOverride})
	got, err := d.Extract([]byte(`const u = "https://" + window.location.host + "/api";`))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(got, "https://example.com/api") {
		t.Errorf("got %v, want a set containing https://example.com/api", got)
	}
}

func TestExtractMaxNodesBudget(t *testing.T) {
	d := New(Options{MaxNodes: 3})
	source := []byte(`const a="/one"; const b="/two"; const c="/three"; const e="/four";`)
	got, err := d.Extract(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) >= 4 {
		t.Errorf("expected budget to truncate traversal, got %v", got)
	}
}
