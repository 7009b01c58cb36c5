// Package query abstracts structured-query languages for extracting values
// from nested payload trees (maps, slices, scalars). Languages register on
// a Registry; the mapping adapter picks one per field.
package query

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownLanguage is returned when no language with the requested name
// is registered. This is a configuration error and fatal to the caller.
var ErrUnknownLanguage = errors.New("unknown query language")

// Language evaluates expressions of one query language against a payload
// node. Extract returns nil (not an error) when a well-formed expression
// matches nothing; a malformed expression returns an error the caller is
// expected to log and degrade to nil.
type Language interface {
	// Name returns the language identifier used in mapping definitions.
	Name() string

	// Extract evaluates expr against node.
	Extract(node any, expr string) (any, error)
}

// Registry manages query languages.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]Language
}

// NewRegistry creates a registry with the default languages registered:
// jsonpath and jmespath.
func NewRegistry() *Registry {
	r := &Registry{
		languages: make(map[string]Language),
	}

	r.Register(NewJSONPath())
	r.Register(NewJMESPath())

	return r
}

// Register adds a language to the registry.
func (r *Registry) Register(l Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[l.Name()] = l
}

// Get returns the language with the given name, or an error wrapping
// ErrUnknownLanguage.
func (r *Registry) Get(name string) (Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.languages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return l, nil
}

// Extract evaluates expr in the named language against node.
func (r *Registry) Extract(node any, expr, language string) (any, error) {
	l, err := r.Get(language)
	if err != nil {
		return nil, err
	}
	return l.Extract(node, expr)
}

// Names returns the registered language names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.languages))
	for name := range r.languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
