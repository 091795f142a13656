// Package routeparam rewrites `:name` and `[NAME]` route-parameter syntax
// into the `{name}` form, so downstream consumers see a named placeholder
// rather than framework-specific matcher syntax.
package routeparam

import "regexp"

var (
	// colonParamRe matches `:name` immediately after a `/` or at the start
	// of the candidate.
	colonParamRe = regexp.MustCompile(`(^|/):([A-Za-z_][A-Za-z0-9_]*)`)
	// bracketParamRe matches `[NAME]` anywhere in the candidate.
	bracketParamRe = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*)\]`)
)

// Normalize rewrites both route-parameter forms into `{name}`. Only the
// normalized form is retained; no trace of the original `:name`/`[NAME]`
// syntax survives.
func Normalize(s string) string {
	s = colonParamRe.ReplaceAllString(s, "${1}{${2}}")
	s = bracketParamRe.ReplaceAllString(s, "{$1}")
	return s
}
