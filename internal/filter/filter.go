// Package filter classifies extraction candidates: a battery of rejection
// rules for strings that look like URLs but never identify an endpoint,
// plus a file-extension allowlist.
package filter

import (
	"regexp"
	"strings"
)

// w3cNamespaceAllowlist holds well-known W3C/XML namespace URIs that show
// up verbatim in JS/HTML source but never identify an application
// endpoint.
var w3cNamespaceAllowlist = []string{
	"http://www.w3.org/",
	"http://schemas.xmlsoap.org/",
	"http://schemas.microsoft.com/",
	"http://purl.org/",
	"http://xmlns.com/",
}

// genericTestHosts are placeholder hostnames used in examples/tests rather
// than real endpoints.
var genericTestHosts = []string{"localhost", "a", "b"}

// defaultExtensions is the built-in file-extension allowlist, augmentable
// by the extensions configuration option.
var defaultExtensions = []string{
	".html", ".htm", ".json", ".js", ".css", ".png", ".jpg", ".jpeg",
	".gif", ".svg", ".ico", ".pdf", ".xml", ".txt", ".woff", ".woff2",
	".map", ".webp", ".mp4", ".csv",
}

var (
	schemeOnlyRe    = regexp.MustCompile(`^[a-z]+://$`)
	mimeShapeRe     = regexp.MustCompile(`^[a-z]+/[a-z0-9.+-]+(;.*)?$`)
	dottedIdentRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)
	dateFormatRe    = regexp.MustCompile(`(?i)^/?(yyyy|yy)[-/](mm)[-/](dd)`)
	tzIdentRe       = regexp.MustCompile(`^[A-Z][a-zA-Z_]+/[A-Z][a-zA-Z_]+$`)
	templateLabelRe = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)
	separatorRe     = regexp.MustCompile(`[/\-_.]+`)
	hostLikeRe      = regexp.MustCompile(`^[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+$`)
	knownTLDs       = regexp.MustCompile(`\.(com|org|net|io|dev|app|gov|edu|co|ai)$`)
)

var ianaZones = map[string]bool{
	"America/New_York": true, "America/Los_Angeles": true, "America/Chicago": true,
	"America/Denver": true, "America/Sao_Paulo": true, "Europe/London": true,
	"Europe/Paris": true, "Europe/Berlin": true, "Europe/Moscow": true,
	"Asia/Tokyo": true, "Asia/Shanghai": true, "Asia/Kolkata": true,
	"Australia/Sydney": true, "Pacific/Auckland": true, "Africa/Cairo": true,
	"UTC": true,
}

// Options carries the filter's configuration surface: the user-supplied
// extension-allowlist augmentation and the placeholder token in effect.
type Options struct {
	Extensions  []string
	Placeholder string
}

func (o Options) placeholder() string {
	if o.Placeholder == "" {
		return "FUZZ"
	}
	return o.Placeholder
}

// Filter decides whether a candidate survives the rejection rules. It
// returns the (possibly bracket-trimmed) candidate and whether it should
// be kept.
func Filter(candidate string, opts Options) (string, bool) {
	c := trimUnbalancedBrackets(candidate)
	if c == "" {
		return "", false
	}
	if isRejected(c, opts.placeholder()) {
		return "", false
	}
	return c, true
}

func isRejected(c, placeholder string) bool {
	switch {
	case isBareScheme(c):
		return true
	case mimeShapeRe.MatchString(c):
		return true
	case dottedIdentRe.MatchString(c) && !strings.Contains(c, "/") &&
		!(hostLikeRe.MatchString(c) && knownTLDs.MatchString(c)):
		return true
	case isW3CNamespace(c):
		return true
	case isGenericTestURL(c):
		return true
	case isPlaceholderOnly(c, placeholder):
		return true
	case dateFormatRe.MatchString(c):
		return true
	case isIANATimezone(c):
		return true
	case !hasStructuralURLSignal(c):
		return true
	}
	return false
}

func isBareScheme(c string) bool {
	switch c {
	case "https://", "http://", "//", "http:":
		return true
	}
	return schemeOnlyRe.MatchString(c)
}

func isW3CNamespace(c string) bool {
	for _, ns := range w3cNamespaceAllowlist {
		if strings.HasPrefix(c, ns) {
			return true
		}
	}
	return false
}

func isGenericTestURL(c string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if !strings.HasPrefix(c, scheme) {
			continue
		}
		rest := strings.TrimPrefix(c, scheme)
		for _, host := range genericTestHosts {
			if rest == host {
				return true
			}
		}
	}
	return false
}

// isPlaceholderOnly reports whether the candidate consists solely of
// placeholder tokens and separators, e.g. "FUZZ/FUZZ" or "{x}/{y}".
// Every `{name}` template label and every literal placeholder token is
// stripped out; what's left must be nothing but separators (`/`, `-`, `_`,
// `.`) for the candidate to be rejected.
func isPlaceholderOnly(c, placeholder string) bool {
	stripped := templateLabelRe.ReplaceAllString(c, "")
	stripped = strings.ReplaceAll(stripped, placeholder, "")
	if stripped == c {
		return false
	}
	stripped = separatorRe.ReplaceAllString(stripped, "")
	return stripped == ""
}

func isIANATimezone(c string) bool {
	if ianaZones[c] {
		return true
	}
	return tzIdentRe.MatchString(c) && !strings.Contains(c, "/v") && countSlashes(c) == 1
}

func countSlashes(s string) int {
	return strings.Count(s, "/")
}

// hasStructuralURLSignal is the final catch-all: reject
// anything with no scheme, no leading slash, and no dotted host component
// that looks like a hostname.
func hasStructuralURLSignal(c string) bool {
	if strings.Contains(c, "://") || strings.HasPrefix(c, "//") || strings.HasPrefix(c, "/") {
		return true
	}
	if hostLikeRe.MatchString(c) && knownTLDs.MatchString(c) {
		return true
	}
	return false
}

// trimUnbalancedBrackets trims a trailing ')', ']', or '}' whose opener
// does not appear earlier in the candidate.
func trimUnbalancedBrackets(c string) string {
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for len(c) > 0 {
		last := c[len(c)-1]
		opener, isCloser := pairs[last]
		if !isCloser {
			break
		}
		if strings.IndexByte(c, opener) >= 0 {
			break
		}
		c = c[:len(c)-1]
	}
	return c
}

// HasAllowedExtension reports whether c's final path segment carries a
// recognized extension, from the built-in set augmented by
// opts.Extensions.
func HasAllowedExtension(c string, opts Options) bool {
	seg := c
	if i := strings.LastIndexByte(c, '/'); i >= 0 {
		seg = c[i+1:]
	}
	if i := strings.IndexAny(seg, "?#"); i >= 0 {
		seg = seg[:i]
	}
	dot := strings.LastIndexByte(seg, '.')
	if dot < 0 {
		return false
	}
	ext := strings.ToLower(seg[dot:])
	for _, e := range defaultExtensions {
		if e == ext {
			return true
		}
	}
	for _, e := range opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
