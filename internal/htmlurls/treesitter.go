package htmlurls

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sawzeeyy/w3av/internal/parser"
)

// extractTreeSitter is the alternate backend, walking the tree-sitter
// HTML grammar through parser.ParseHTML.
func extractTreeSitter(s string) ([]string, error) {
	source := []byte(s)
	tree, err := parser.ParseHTML(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var out []string
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "start_tag", "self_closing_tag":
			out = append(out, tagAttrURLs(n, source)...)
		}
		return true
	})
	return out, nil
}

func tagAttrURLs(tagNode *tree_sitter.Node, source []byte) []string {
	var tag string
	for i := uint(0); i < tagNode.ChildCount(); i++ {
		c := tagNode.Child(i)
		if c != nil && c.Kind() == "tag_name" {
			tag = parser.NodeText(c, source)
			break
		}
	}

	var out []string
	for i := uint(0); i < tagNode.ChildCount(); i++ {
		attr := tagNode.Child(i)
		if attr == nil || attr.Kind() != "attribute" {
			continue
		}
		name, val, ok := attrNameValue(attr, source)
		if !ok {
			continue
		}
		extract, isSrcset := attrIsURLBearing(tag, name)
		if !extract {
			continue
		}
		if len(name) > len("data-") && name[:5] == "data-" {
			if !looksURLLike(val) {
				continue
			}
		}
		if isSrcset {
			out = append(out, splitSrcset(val)...)
			continue
		}
		if val != "" {
			out = append(out, val)
		}
	}
	return out
}

func attrNameValue(attr *tree_sitter.Node, source []byte) (name, value string, ok bool) {
	for i := uint(0); i < attr.ChildCount(); i++ {
		c := attr.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "attribute_name":
			name = parser.NodeText(c, source)
		case "attribute_value":
			value = parser.NodeText(c, source)
		case "quoted_attribute_value":
			for j := uint(0); j < c.ChildCount(); j++ {
				inner := c.Child(j)
				if inner != nil && inner.Kind() == "attribute_value" {
					value = parser.NodeText(inner, source)
				}
			}
		}
	}
	return name, value, name != ""
}
