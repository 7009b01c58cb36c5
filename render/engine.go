// Package render compiles and renders template strings with interchangeable
// engines. Two engine families ship by default: mustache, a logic-restricted
// style safe for most configuration fields, and gotemplate, a generic
// embedded-expression style for advanced users. Engine selection is
// per-field, either explicit via a value's tag or inferred from the schema's
// templating directive.
package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnsupportedEngine is returned when no engine with the requested name
// is registered. Templates are config-authored, so this is fatal at load
// time.
var ErrUnsupportedEngine = errors.New("unsupported template engine")

// CompileError reports a template that failed to compile, naming the
// source path so the user can find the offending field.
type CompileError struct {
	// Path is the settings or mapping path of the template source.
	Path string
	// Engine is the engine the source was compiled with.
	Engine string
	// Err is the underlying engine error.
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s template at %s: %v", e.Engine, e.Path, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Engine compiles template source for one template language.
type Engine interface {
	// Name returns the engine identifier used in tags and directives.
	Name() string

	// Compile parses src into a reusable template.
	Compile(src string) (Template, error)
}

// Template renders against a context map.
type Template interface {
	Render(ctx map[string]any) (string, error)
}

// Registry manages template engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry creates a registry with the default engines registered:
// mustache and gotemplate.
func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[string]Engine),
	}

	r.Register(NewMustache())
	r.Register(NewGoTemplate())

	return r
}

// Register adds an engine to the registry.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Name()] = e
}

// Get returns the engine with the given name, or an error wrapping
// ErrUnsupportedEngine.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, name)
	}
	return e, nil
}

// Compile compiles src with the named engine. Failures come back as a
// *CompileError naming path.
func (r *Registry) Compile(path, engine, src string) (Template, error) {
	e, err := r.Get(engine)
	if err != nil {
		return nil, err
	}

	tmpl, err := e.Compile(src)
	if err != nil {
		return nil, &CompileError{Path: path, Engine: engine, Err: err}
	}
	return tmpl, nil
}

// Render compiles and renders src in one shot, for callers without a
// reusable handle.
func (r *Registry) Render(path, engine, src string, ctx map[string]any) (string, error) {
	tmpl, err := r.Compile(path, engine, src)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx)
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
