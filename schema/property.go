package schema

import "strings"

// Templating is the per-property templating directive. It names the engine
// used for untagged values at the property's path and whether rendering is
// deferred until a runtime context is available.
type Templating struct {
	// DefaultEngine is the engine for values without an explicit tag.
	DefaultEngine string
	// Delayed marks the field as compile-now-render-later.
	Delayed bool
}

// Property is one node of the schema tree. A node either declares nested
// named properties (Properties, in declaration order) or is a free-form map
// (ArbitraryKeys): declared keys get defaults injected on merge, arbitrary
// keys pass through verbatim.
type Property struct {
	// Name is the key under the parent node.
	Name string
	// Path is the dotted path from the root, used in diagnostics.
	Path string
	// Type is the declared value type (string, number, bool, array, object).
	Type string
	// Default is the value used when the user supplies none. May contain
	// attribute placeholders and TaggedString values until resolved.
	Default any
	// Docs is the human-readable description from the schema document.
	Docs string
	// Templating is the optional templating directive for this path.
	Templating *Templating

	// Properties holds declared child properties; Order preserves their
	// declaration order for deterministic merges and diagnostics.
	Properties map[string]*Property
	Order      []string

	// ArbitraryKeys marks a free-form map node. Wildcard carries the
	// placeholder child (named like "<slug>") documenting the entry shape.
	ArbitraryKeys bool
	Wildcard      *Property
}

// Schema is a loaded configuration schema: the root property set plus its
// declaration order.
type Schema struct {
	Properties map[string]*Property
	Order      []string
}

// Property returns the declared property at a dotted path, or nil when the
// path is not declared. Under a free-form node the wildcard child stands in
// for any key name.
func (s *Schema) Property(path string) *Property {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	props := s.Properties
	i := 0
	for i < len(parts) {
		p, ok := props[parts[i]]
		if !ok {
			return nil
		}
		if i == len(parts)-1 {
			return p
		}
		if p.ArbitraryKeys {
			if p.Wildcard == nil {
				return nil
			}
			// The next segment is a user-chosen key; the wildcard entry
			// stands in for it.
			if i+1 == len(parts)-1 {
				return p.Wildcard
			}
			props = p.Wildcard.Properties
			i += 2
			continue
		}
		props = p.Properties
		i++
	}
	return nil
}
