// Package context implements the context injector: parsing caller-supplied name→value bindings from JSON, a JSON file,
// or repeated KEY=VALUE pairs, and applying them into a symtab.Table under
// one of three policies before extraction runs.
package context

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sawzeeyy/w3av/internal/symtab"
)

// Policy selects how context bindings interact with file-derived symbols.
type Policy string

const (
	// PolicyMerge adds context values alongside file-derived ones; both
	// are emitted.
	PolicyMerge Policy = "merge"
	// PolicyOverride replaces file-derived values for names present in
	// the context; other names still resolve from the file.
	PolicyOverride Policy = "override"
	// PolicyOnly ignores file-derived symbols; all lookups use the
	// context alone.
	PolicyOnly Policy = "only"
)

// locationKeyPrefix is the dotted-key prefix that installs overrides into
// the special window.location resolver.
const locationKeyPrefix = "window.location."

// Bindings is a parsed name→value(s) context map, ready to apply to a
// symtab.Table. Multiple values for one name (repeatable KEY=VALUE flags)
// accumulate in order.
type Bindings struct {
	values   map[string][]string
	location map[string]string
}

// New returns an empty Bindings, ready for Set or the parsers below.
func New() *Bindings {
	return &Bindings{values: map[string][]string{}, location: map[string]string{}}
}

// Set adds a single value for name, routing window.location.* keys to the
// location override table.
func (b *Bindings) Set(name, value string) {
	if strings.HasPrefix(name, locationKeyPrefix) {
		prop := strings.TrimPrefix(name, locationKeyPrefix)
		b.location[prop] = value
		return
	}
	b.values[name] = append(b.values[name], value)
}

// Location returns the override for a window.location property, if any.
func (b *Bindings) Location(prop string) (string, bool) {
	v, ok := b.location[prop]
	return v, ok
}

// LocationOverrides returns every window.location.* override, keyed by
// property name, for installing into the evaluator's location resolver.
func (b *Bindings) LocationOverrides() map[string]string {
	out := make(map[string]string, len(b.location))
	for k, v := range b.location {
		out[k] = v
	}
	return out
}

// Names returns every plain (non-location) bound name.
func (b *Bindings) Names() []string {
	out := make([]string, 0, len(b.values))
	for name := range b.values {
		out = append(out, name)
	}
	return out
}

// Values returns the accumulated values for name.
func (b *Bindings) Values(name string) []string {
	return b.values[name]
}

// ParseJSON parses a JSON object of name -> string | []string into
// Bindings. A malformed document is a terminal failure.
func ParseJSON(data []byte) (*Bindings, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("context: malformed JSON: %w", err)
	}
	b := New()
	for name, v := range raw {
		switch val := v.(type) {
		case string:
			b.Set(name, val)
		case []any:
			for _, elem := range val {
				s, ok := elem.(string)
				if !ok {
					return nil, fmt.Errorf("context: key %q has non-string array element", name)
				}
				b.Set(name, s)
			}
		default:
			return nil, fmt.Errorf("context: key %q has unsupported value type %T", name, v)
		}
	}
	return b, nil
}

// ParseJSONFile reads and parses a JSON context file.
func ParseJSONFile(path string) (*Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("context: reading %s: %w", path, err)
	}
	return ParseJSON(data)
}

// ParseKeyValues parses a list of "KEY=VALUE" strings, as supplied by
// repeatable --context flags. A malformed pair (no `=`) is a
// terminal failure.
func ParseKeyValues(pairs []string) (*Bindings, error) {
	b := New()
	for _, p := range pairs {
		idx := strings.IndexByte(p, '=')
		if idx < 0 {
			return nil, fmt.Errorf("context: malformed KEY=VALUE pair %q", p)
		}
		b.Set(p[:idx], p[idx+1:])
	}
	return b, nil
}

// Apply installs the bindings into table under policy. For
// PolicyOnly, the caller is expected to have skipped symbol-table
// construction entirely; Apply
// still seeds the program scope so lookups succeed.
func Apply(table *symtab.Table, b *Bindings, policy Policy) {
	if b == nil {
		return
	}
	for _, name := range b.Names() {
		values := b.Values(name)
		val := symtab.Value{Strings: append([]string{}, values...)}

		switch policy {
		case PolicyOverride, PolicyOnly:
			table.Seed(name, val, symtab.PolicyOverride)
		default: // PolicyMerge
			table.Seed(name, val, symtab.PolicyMerge)
		}
	}
}
