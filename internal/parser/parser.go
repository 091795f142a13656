// Package parser wraps the tree-sitter grammars this module needs: the
// JavaScript grammar the engine walks, and the HTML grammar one of the
// embedded-markup backends uses. Parsers are pooled per grammar to keep per-file
// allocation off the hot path.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/sawzeeyy/w3av/internal/lang"
)

var (
	languagesOnce sync.Once
	jsLanguage    *tree_sitter.Language
	htmlLanguage  *tree_sitter.Language
	jsPool        *sync.Pool
	htmlPool      *sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		jsLanguage = tree_sitter.NewLanguage(tree_sitter_javascript.Language())
		htmlLanguage = tree_sitter.NewLanguage(tree_sitter_html.Language())

		jsPool = &sync.Pool{New: func() any { return newParserFor(jsLanguage) }}
		htmlPool = &sync.Pool{New: func() any { return newParserFor(htmlLanguage) }}
	})
}

func newParserFor(l *tree_sitter.Language) *tree_sitter.Parser {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(l); err != nil {
		panic(fmt.Sprintf("set language: %v", err))
	}
	return p
}

// GetLanguage returns the tree-sitter Language for a lang.Language.
func GetLanguage(l lang.Language) (*tree_sitter.Language, error) {
	initLanguages()
	switch l {
	case lang.JavaScript, lang.JSX:
		return jsLanguage, nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
}

// Parse parses JavaScript source into a tree-sitter AST Tree. The caller
// must call tree.Close() when done.
func Parse(source []byte) (*tree_sitter.Tree, error) {
	initLanguages()
	p, _ := jsPool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to acquire javascript parser")
	}
	tree := p.Parse(source, nil)
	jsPool.Put(p)
	if tree == nil {
		return nil, fmt.Errorf("parse failed")
	}
	return tree, nil
}

// ParseHTML parses an HTML fragment into a tree-sitter AST Tree, for the
// tree-sitter HTML extraction backend. The caller must call tree.Close() when done.
func ParseHTML(source []byte) (*tree_sitter.Tree, error) {
	initLanguages()
	p, _ := htmlPool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to acquire html parser")
	}
	tree := p.Parse(source, nil)
	htmlPool.Put(p)
	if tree == nil {
		return nil, fmt.Errorf("parse failed")
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip the node's children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order, calling fn for each node.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	WalkBounded(node, fn, 0)
}

// WalkBounded is Walk with a node-visit budget. A budget
// of 0 means unbounded. Returns the number of nodes actually visited.
func WalkBounded(node *tree_sitter.Node, fn WalkFunc, budget int) int {
	visited := 0
	var walk func(n *tree_sitter.Node) bool
	walk = func(n *tree_sitter.Node) bool {
		if n == nil {
			return true
		}
		if budget > 0 && visited >= budget {
			return false
		}
		visited++
		if !fn(n) {
			return true
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if budget > 0 && visited >= budget {
				return false
			}
			if !walk(n.Child(i)) {
				return false
			}
		}
		return true
	}
	walk(node)
	return visited
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
