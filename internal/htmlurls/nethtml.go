package htmlurls

import (
	"strings"

	"golang.org/x/net/html"
)

// extractNetHTML implements the default backend using golang.org/x/net/html,
// the way cuelang.org/go's encoding packages lean on it for other markup
// formats embedded in source text.
func extractNetHTML(s string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, err
	}

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := n.Data
			for _, a := range n.Attr {
				extract, isSrcset := attrIsURLBearing(tag, a.Key)
				if !extract {
					continue
				}
				if strings.HasPrefix(a.Key, "data-") && a.Key != "data" {
					if !looksURLLike(a.Val) {
						continue
					}
				}
				if isSrcset {
					out = append(out, splitSrcset(a.Val)...)
					continue
				}
				if a.Val != "" {
					out = append(out, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}
