package schema

import (
	"regexp"
	"strings"
)

// Double-brace blocks are template syntax, not attribute placeholders; the
// alternation consumes them first so "{{name}}" is never rewritten.
var placeholderRe = regexp.MustCompile(`\{\{[^{}]*\}\}|\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveAttributes substitutes {name} placeholders in every property
// default with the matching attribute value, including inside composite
// defaults. Placeholders without a matching attribute are left verbatim
// rather than failing, so re-running on an already-resolved tree is a
// no-op. Call once, before Merge.
func (s *Schema) ResolveAttributes(attrs map[string]string) {
	for _, name := range s.Order {
		resolveProperty(s.Properties[name], attrs)
	}
}

func resolveProperty(p *Property, attrs map[string]string) {
	if p == nil {
		return
	}
	p.Default = resolveValue(p.Default, attrs)
	for _, name := range p.Order {
		resolveProperty(p.Properties[name], attrs)
	}
	resolveProperty(p.Wildcard, attrs)
}

func resolveValue(v any, attrs map[string]string) any {
	switch val := v.(type) {
	case string:
		return ReplaceAttributes(val, attrs)
	case TaggedString:
		return TaggedString{Value: ReplaceAttributes(val.Value, attrs), Tag: val.Tag}
	case map[string]any:
		for k, item := range val {
			val[k] = resolveValue(item, attrs)
		}
		return val
	case []any:
		for i := range val {
			val[i] = resolveValue(val[i], attrs)
		}
		return val
	default:
		return v
	}
}

// ReplaceAttributes replaces every {name} occurrence in s with the matching
// attribute value. Unmatched placeholders stay verbatim.
func ReplaceAttributes(s string, attrs map[string]string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "{{") {
			return m
		}
		if v, ok := attrs[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
