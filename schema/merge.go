package schema

// Merge merges user-supplied settings onto the schema defaults, producing
// one canonical settings tree. Declared properties are processed in
// declaration order: a user value trimmed to the "$nil" sentinel removes
// the key entirely, otherwise the user value wins over the default, nested
// property nodes recurse (coercing non-map values to an empty map), and an
// absent array-typed value falls back to the default or an empty list.
// User keys not declared in the schema are copied through verbatim, again
// honoring the sentinel. The result shares no structure with the input:
// re-merging it against the same schema yields the same tree.
func (s *Schema) Merge(user map[string]any) map[string]any {
	return mergeProperties(s.Properties, s.Order, user)
}

func mergeProperties(props map[string]*Property, order []string, user map[string]any) map[string]any {
	out := make(map[string]any, len(order))
	for _, name := range order {
		uv, has := user[name]
		if has && IsNilSentinel(uv) {
			continue
		}
		out[name] = mergeProperty(props[name], uv, has)
	}
	for k, v := range user {
		if _, declared := props[k]; declared {
			continue
		}
		if IsNilSentinel(v) {
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

func mergeProperty(p *Property, uv any, has bool) any {
	effective := p.Default
	if has {
		effective = uv
	}

	if p.ArbitraryKeys {
		return mergeArbitrary(p, effective)
	}
	if len(p.Properties) > 0 {
		m, _ := effective.(map[string]any)
		return mergeProperties(p.Properties, p.Order, m)
	}
	if effective == nil && p.Type == "array" {
		return []any{}
	}
	return copyValue(effective)
}

// mergeArbitrary passes user-chosen keys through a free-form node. When the
// wildcard documents an entry shape, each entry merges against it so entry
// defaults are injected; otherwise entries copy through untouched.
func mergeArbitrary(p *Property, effective any) map[string]any {
	m, _ := effective.(map[string]any)
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsNilSentinel(v) {
			continue
		}
		if p.Wildcard != nil && len(p.Wildcard.Properties) > 0 {
			vm, _ := v.(map[string]any)
			out[k] = mergeProperties(p.Wildcard.Properties, p.Wildcard.Order, vm)
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies a tree value, dropping "$nil"-valued map keys at
// any depth. Scalars and TaggedString values copy by value.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if IsNilSentinel(item) {
				continue
			}
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, copyValue(item))
		}
		return out
	default:
		return v
	}
}
