package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/lang"
)

func TestParseJavaScript(t *testing.T) {
	source := []byte(`const base = "/api";
function makeURL(id) {
	return base + "/users/" + id;
}
`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}

	var funcCount int
	Walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			funcCount++
		}
		return true
	})
	if funcCount != 1 {
		t.Errorf("expected 1 function_declaration, got %d", funcCount)
	}
}

func TestParseHTML(t *testing.T) {
	source := []byte(`<a href="/api/users">users</a>`)
	tree, err := ParseHTML(source)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	defer tree.Close()

	if tree.RootNode() == nil {
		t.Fatal("root node is nil")
	}
}

func TestGetLanguage(t *testing.T) {
	if _, err := GetLanguage(lang.JavaScript); err != nil {
		t.Errorf("GetLanguage(JavaScript): %v", err)
	}
	if _, err := GetLanguage("cobol"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestWalkBounded(t *testing.T) {
	source := []byte(`const a = 1; const b = 2; const c = 3;`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	visited := WalkBounded(tree.RootNode(), func(n *tree_sitter.Node) bool { return true }, 3)
	if visited != 3 {
		t.Errorf("expected WalkBounded to stop at 3 nodes, visited %d", visited)
	}
}

func TestNodeText(t *testing.T) {
	source := []byte(`const base = "/api";`)
	tree, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	var name string
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "variable_declarator" {
			nameNode := n.ChildByFieldName("name")
			name = NodeText(nameNode, source)
			return false
		}
		return true
	})
	if name != "base" {
		t.Errorf("expected base, got %q", name)
	}
}
