// Package htmlurls implements the HTML-embedded URL extractor: when a candidate string looks like an HTML
// fragment, it is parsed by a selectable backend and its URL-bearing
// attributes are pulled out as independent candidates, re-entering the
// normalize/filter pipeline the same way ordinary JavaScript-derived
// candidates do.
package htmlurls

import "strings"

// Backend selects which HTML parser implementation extracts attributes.
type Backend string

const (
	// BackendNetHTML uses golang.org/x/net/html (the default).
	BackendNetHTML Backend = "net-html"
	// BackendTreeSitter uses the tree-sitter HTML grammar via internal/parser.
	BackendTreeSitter Backend = "tree-sitter"
)

// urlAttrs is the fixed set of attribute names whose value is always
// treated as URL-bearing.
var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"poster":     true,
	"background": true,
}

// LooksLikeHTML reports whether a decoded candidate string should be
// handed to the HTML backend: trimmed text beginning with `<` or
// containing `<!DOCTYPE`.
func LooksLikeHTML(s string) bool {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "<") {
		return true
	}
	return strings.Contains(strings.ToUpper(trimmed), "<!DOCTYPE")
}

// Extract parses s as HTML with the given backend and returns every
// URL-bearing attribute value found, in document order. The original HTML
// string itself is never included. A non-nil error means the backend could
// not parse s at all; callers then treat s as an ordinary candidate.
func Extract(s string, backend Backend) ([]string, error) {
	switch backend {
	case BackendTreeSitter:
		return extractTreeSitter(s)
	default:
		return extractNetHTML(s)
	}
}

// looksURLLike is the heuristic applied to data-* attribute values.
func looksURLLike(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if strings.Contains(v, "://") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/") {
		return true
	}
	return strings.Contains(v, ".") && !strings.ContainsAny(v, " \t\n")
}

// splitSrcset breaks a `srcset` attribute value into its comma-separated
// descriptors, taking the first whitespace-delimited token of each piece
// as the URL. The srcset microsyntax does not escape commas inside URLs;
// splitting on commas first is the same tradeoff browsers accept.
func splitSrcset(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

// attrIsURLBearing reports whether a given (tag, attribute) pair should be
// extracted, and whether it additionally needs srcset-style splitting.
func attrIsURLBearing(tag, attr string) (extract bool, isSrcset bool) {
	if attr == "srcset" {
		return true, true
	}
	if attr == "data" {
		return tag == "object", false
	}
	if urlAttrs[attr] {
		return true, false
	}
	if strings.HasPrefix(attr, "data-") {
		return true, false
	}
	return false, false
}
