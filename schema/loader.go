package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses a schema document into a Schema. The document carries a
// top-level "properties" mapping; each property node may declare "type",
// "default", "docs", "templating" and nested "properties". Local YAML tags
// on string defaults (e.g. `memo: !mustache "..."`) are preserved as
// TaggedString values. Load failures indicate a broken setup and are fatal
// to the caller.
func Load(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema document root must be a mapping")
	}

	propsNode := childByKey(root, "properties")
	if propsNode == nil {
		return nil, fmt.Errorf("schema document has no properties key")
	}

	props, order, err := parseProperties(propsNode, "")
	if err != nil {
		return nil, err
	}

	return &Schema{Properties: props, Order: order}, nil
}

// DecodeMap decodes an arbitrary user document into a nested map with the
// same tag preservation as Load: string scalars with a local tag become
// TaggedString values. An empty document decodes to an empty map.
func DecodeMap(data []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return map[string]any{}, nil
	}

	v, err := NodeValue(root)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping")
	}
	return m, nil
}

// NodeValue decodes a YAML node into a plain Go value, preserving local
// tags on scalars as TaggedString. Mappings decode to map[string]any,
// sequences to []any, untagged scalars to their resolved Go type.
func NodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return NodeValue(n.Content[0])
	case yaml.AliasNode:
		return NodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := NodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := NodeValue(item)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.ScalarNode:
		if isLocalTag(n.Tag) {
			return TaggedString{Value: n.Value, Tag: strings.TrimPrefix(n.Tag, "!")}, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode scalar at line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

func parseProperties(n *yaml.Node, parentPath string) (map[string]*Property, []string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("properties under %q must be a mapping", displayPath(parentPath))
	}

	props := make(map[string]*Property, len(n.Content)/2)
	var order []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		path := joinPath(parentPath, name)
		p, err := parseProperty(name, path, n.Content[i+1])
		if err != nil {
			return nil, nil, err
		}
		props[name] = p
		order = append(order, name)
	}
	return props, order, nil
}

func parseProperty(name, path string, n *yaml.Node) (*Property, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("property %q must be a mapping", path)
	}

	p := &Property{Name: name, Path: path}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]
		switch key {
		case "type":
			p.Type = val.Value
		case "docs":
			p.Docs = val.Value
		case "default":
			v, err := NodeValue(val)
			if err != nil {
				return nil, fmt.Errorf("default for %q: %w", path, err)
			}
			p.Default = v
		case "templating":
			t, err := parseTemplating(val, path)
			if err != nil {
				return nil, err
			}
			p.Templating = t
		case "properties":
			children, order, err := parseProperties(val, path)
			if err != nil {
				return nil, err
			}
			if err := p.attachChildren(children, order); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// attachChildren splits parsed child properties into declared keys and the
// placeholder wildcard. A node whose child key is written "<name>" is a
// free-form map; mixing a placeholder with declared siblings is a schema
// authoring error.
func (p *Property) attachChildren(children map[string]*Property, order []string) error {
	for _, name := range order {
		if !isPlaceholderKey(name) {
			continue
		}
		if p.Wildcard != nil {
			return fmt.Errorf("property %q declares more than one placeholder key", p.Path)
		}
		if len(order) > 1 {
			return fmt.Errorf("property %q mixes placeholder key %q with declared keys", p.Path, name)
		}
		p.ArbitraryKeys = true
		p.Wildcard = children[name]
	}
	if p.ArbitraryKeys {
		return nil
	}
	p.Properties = children
	p.Order = order
	return nil
}

func parseTemplating(n *yaml.Node, path string) (*Templating, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("templating for %q must be a mapping", path)
	}

	var t Templating
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]
		switch key {
		case "default_engine":
			t.DefaultEngine = val.Value
		case "delayed":
			if err := val.Decode(&t.Delayed); err != nil {
				return nil, fmt.Errorf("templating delayed for %q: %w", path, err)
			}
		}
	}
	return &t, nil
}

// isPlaceholderKey reports whether a property key uses the arbitrary-key
// convention "<name>".
func isPlaceholderKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "<") && strings.HasSuffix(key, ">")
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	if doc.Kind == 0 {
		return nil
	}
	return doc
}

func childByKey(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
