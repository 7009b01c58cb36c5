package mapping

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Registry resolves mapping definitions by origin type. Built-in jira and
// github definitions are registered at construction; definitions loaded
// from a directory override them by name.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	logger *slog.Logger
}

// NewRegistry creates a registry with the built-in definitions.
func NewRegistry(logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		defs:   make(map[string]*Definition, len(builtinDefinitions)),
		logger: logger,
	}
	for name, doc := range builtinDefinitions {
		def, err := LoadDefinition(name, []byte(doc))
		if err != nil {
			return nil, fmt.Errorf("builtin mapping %s: %w", name, err)
		}
		r.defs[name] = def
	}
	return r, nil
}

// Register adds a definition, replacing any existing one of the same name.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
}

// Get returns the definition for an origin type. The error wraps
// ErrNotFound when no definition is registered under the name.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("origin type %q: %w", name, ErrNotFound)
	}
	return def, nil
}

// Names returns the registered definition names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir loads every *.yaml / *.yml definition in dir. The file base name
// becomes the definition name, overriding a built-in of the same name.
func (r *Registry) LoadDir(dir string) error {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "*.{yaml,yml}"))
	if err != nil {
		return fmt.Errorf("scan mapping dir %s: %w", dir, err)
	}
	sort.Strings(matches)

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read mapping %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		def, err := LoadDefinition(name, data)
		if err != nil {
			return err
		}
		r.Register(def)
		r.logger.Debug("loaded mapping definition",
			slog.String("name", name),
			slog.String("path", path))
	}
	return nil
}
