// Package schema loads configuration-schema documents into a property tree,
// resolves attribute placeholders in declared defaults, and merges
// user-supplied settings onto the schema with pass-only-what-the-user-set
// semantics.
package schema

import "strings"

// NilSentinel is the reserved user-config value meaning "remove this key".
// It is distinct from omitting the key, which means "use the default".
const NilSentinel = "$nil"

// TaggedString is a string scalar that carried an explicit local tag in the
// source document (e.g. `summary: !mustache "{{summary}}"`). The tag selects
// the template engine or semantic applied downstream. Values in decoded
// trees are either plain Go scalars, maps, slices, or TaggedString — type
// switches over tree values should handle exactly these cases.
type TaggedString struct {
	// Value is the raw scalar text.
	Value string
	// Tag is the local tag name without the leading "!".
	Tag string
}

// IsNilSentinel reports whether a user-supplied value is the removal
// sentinel. Surrounding whitespace is ignored.
func IsNilSentinel(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == NilSentinel
}

// isLocalTag reports whether a YAML tag is an application tag ("!name")
// rather than a resolved core tag ("!!str", "!!int", ...).
func isLocalTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}
