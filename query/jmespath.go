package query

import (
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// JMESPath evaluates JMESPath expressions. Unlike jsonpath, projections
// already yield lists, so results pass through as the library returns them;
// a non-matching expression yields nil.
type JMESPath struct{}

// NewJMESPath creates the jmespath query language.
func NewJMESPath() *JMESPath {
	return &JMESPath{}
}

// Name returns "jmespath".
func (q *JMESPath) Name() string { return "jmespath" }

// Extract evaluates a JMESPath expression against node.
func (q *JMESPath) Extract(node any, expr string) (any, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jmespath expression: %w", err)
	}

	result, err := compiled.Search(node)
	if err != nil {
		return nil, fmt.Errorf("evaluate jmespath expression: %w", err)
	}
	return result, nil
}
