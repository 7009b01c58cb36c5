package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// JSONPath evaluates JSONPath expressions. Expressions may omit the leading
// "$." so mapping definitions can use bare dotted paths like
// "fields.summary". A path matching multiple nodes collapses to: no match
// nil, one match the value itself, several matches a slice.
type JSONPath struct{}

// NewJSONPath creates the jsonpath query language.
func NewJSONPath() *JSONPath {
	return &JSONPath{}
}

// Name returns "jsonpath".
func (q *JSONPath) Name() string { return "jsonpath" }

// Extract evaluates a JSONPath expression against node.
func (q *JSONPath) Extract(node any, expr string) (any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jsonpath expression: %w", err)
	}

	results := x.Get(node)
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
