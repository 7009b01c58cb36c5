// Package mapping turns raw tracker payloads into release.Change records,
// driven by declarative mapping definitions: per output field a query path,
// an optional transform, and definition-level defaults for the query
// language and template engine.
package mapping

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved definition keys that configure the definition rather than
// declare output fields.
const (
	itemsKey    = "_items"
	languageKey = "_language"
	engineKey   = "_engine"
)

// skippedKeys are documentation keys the adapter ignores alongside any
// "_"-prefixed key.
var skippedKeys = map[string]bool{
	"docs":     true,
	"examples": true,
}

// Field describes one output field. A scalar entry in the document is
// shorthand for {path: <scalar>}. At most one of Code and Template is set.
type Field struct {
	// Name is the output field the value lands in.
	Name string
	// Path is the query expression extracting the value from the raw
	// record. It may itself be templated against mapping-time values.
	Path string
	// Language overrides the definition's query language for this field.
	Language string
	// Code is a sandboxed expression transform applied to the extracted
	// value.
	Code string
	// Template is a template transform applied to the extracted value.
	Template string
}

// Definition is a loaded mapping definition for one origin type.
type Definition struct {
	// Name is the origin type the definition serves ("jira", "github").
	Name string
	// Items selects the item array inside a map payload; empty means the
	// payload itself is the array.
	Items string
	// Language is the definition's default query language; empty falls
	// back to the configured mapping.language.
	Language string
	// Engine is the definition's default template engine; empty falls
	// back to the configured mapping.engine.
	Engine string
	// Fields holds the output fields in document order.
	Fields []Field
}

// LoadDefinition parses a mapping definition document. Field order follows
// the document; reserved "_"-prefixed keys configure the definition and
// documentation keys are skipped.
func LoadDefinition(name string, doc []byte) (*Definition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", name, err)
	}

	mapping := definitionRoot(&root)
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("mapping %s: document root must be a mapping", name)
	}

	def := &Definition{Name: name}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		val := mapping.Content[i+1]
		switch {
		case key == itemsKey:
			def.Items = val.Value
		case key == languageKey:
			def.Language = val.Value
		case key == engineKey:
			def.Engine = val.Value
		case strings.HasPrefix(key, "_"), skippedKeys[key]:
			continue
		default:
			f, err := parseField(name, key, val)
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, f)
		}
	}

	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("mapping %s: no output fields", name)
	}
	return def, nil
}

func parseField(def, name string, n *yaml.Node) (Field, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return Field{Name: name, Path: n.Value}, nil
	case yaml.MappingNode:
		f := Field{Name: name}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val := n.Content[i+1]
			switch key {
			case "path":
				f.Path = val.Value
			case "language":
				f.Language = val.Value
			case "code":
				f.Code = val.Value
			case "template":
				f.Template = val.Value
			}
		}
		if f.Code != "" && f.Template != "" {
			return Field{}, fmt.Errorf("mapping %s: field %s declares both code and template transforms", def, name)
		}
		return f, nil
	default:
		return Field{}, fmt.Errorf("mapping %s: field %s must be a path string or a mapping", def, name)
	}
}

func definitionRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}
