// Package config merges user release-notes configuration onto the built-in
// schema and renders templated values into an immutable Settings tree.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c360studio/relnotes/render"
	"github.com/c360studio/relnotes/schema"
)

// Loader merges user configuration onto a schema, resolves attribute
// placeholders in defaults, and renders templated values. Attributes are
// resolved exactly once, at construction, before any merge runs.
type Loader struct {
	schema  *schema.Schema
	engines *render.Registry
	attrs   map[string]string
	env     map[string]string
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSchema sets the configuration schema. Without it the built-in
// DefaultSchema is used.
func WithSchema(s *schema.Schema) LoaderOption {
	return func(l *Loader) {
		l.schema = s
	}
}

// WithAttributes sets the attribute values substituted into schema
// defaults ({release}, {date}, ...).
func WithAttributes(attrs map[string]string) LoaderOption {
	return func(l *Loader) {
		l.attrs = attrs
	}
}

// WithEnv sets the environment map exposed to config templates. Without it
// the process environment is used.
func WithEnv(env map[string]string) LoaderOption {
	return func(l *Loader) {
		l.env = env
	}
}

// WithEngines sets the template engine registry.
func WithEngines(reg *render.Registry) LoaderOption {
	return func(l *Loader) {
		l.engines = reg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		engines: render.NewRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.schema == nil {
		s, err := schema.Load([]byte(DefaultSchema))
		if err != nil {
			return nil, fmt.Errorf("load default schema: %w", err)
		}
		l.schema = s
	}
	if l.env == nil {
		l.env = environMap()
	}

	l.schema.ResolveAttributes(l.attrs)
	return l, nil
}

// Load merges a user configuration document (nil for defaults only) onto
// the schema and renders the templated values. Tagged values render with
// the tagged engine; untagged strings render only where the schema declares
// a templating directive for the path. Delayed paths compile now and stay
// in the tree as *render.Field; everything else renders immediately against
// the load scope (attrs, env).
func (l *Loader) Load(doc []byte) (*Settings, error) {
	var user map[string]any
	if len(doc) > 0 {
		m, err := schema.DecodeMap(doc)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		user = m
	}

	merged := l.schema.Merge(user)

	scope := map[string]any{"attrs": l.attrs, "env": l.env}
	if err := l.renderTree(merged, "", scope); err != nil {
		return nil, err
	}

	l.logger.Debug("loaded configuration", slog.Int("keys", len(merged)))
	return newSettings(merged), nil
}

// LoadFile reads and loads a configuration file.
func (l *Loader) LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	l.logger.Debug("loading configuration file", slog.String("path", path))
	return l.Load(data)
}

func (l *Loader) renderTree(m map[string]any, path string, scope map[string]any) error {
	for key, v := range m {
		p := joinPath(path, key)
		switch val := v.(type) {
		case map[string]any:
			if err := l.renderTree(val, p, scope); err != nil {
				return err
			}
		case []any:
			if err := l.renderSlice(val, p, scope); err != nil {
				return err
			}
		case schema.TaggedString:
			out, err := l.renderValue(p, val.Value, val.Tag, true, scope)
			if err != nil {
				return err
			}
			m[key] = out
		case string:
			prop := l.schema.Property(p)
			if prop == nil || prop.Templating == nil {
				continue
			}
			out, err := l.renderValue(p, val, "", false, scope)
			if err != nil {
				return err
			}
			m[key] = out
		}
	}
	return nil
}

func (l *Loader) renderSlice(items []any, path string, scope map[string]any) error {
	for i, item := range items {
		switch iv := item.(type) {
		case map[string]any:
			if err := l.renderTree(iv, path, scope); err != nil {
				return err
			}
		case []any:
			if err := l.renderSlice(iv, path, scope); err != nil {
				return err
			}
		case schema.TaggedString:
			out, err := l.renderValue(path, iv.Value, iv.Tag, true, scope)
			if err != nil {
				return err
			}
			items[i] = out
		}
	}
	return nil
}

// renderValue compiles one templated value. An explicit tag wins over the
// schema's default engine; only a schema directive can defer rendering.
func (l *Loader) renderValue(path, raw, tag string, tagged bool, scope map[string]any) (any, error) {
	engine := tag
	deferred := false
	if prop := l.schema.Property(path); prop != nil && prop.Templating != nil {
		deferred = prop.Templating.Delayed
		if engine == "" {
			engine = prop.Templating.DefaultEngine
		}
	}
	if engine == "" {
		return raw, nil
	}

	field, err := render.NewField(l.engines, path, raw, engine, tagged, deferred)
	if err != nil {
		return nil, fmt.Errorf("config value %s: %w", path, err)
	}
	if deferred {
		l.logger.Debug("compiled deferred config template",
			slog.String("path", path),
			slog.String("engine", engine))
		return field, nil
	}

	rendered, err := field.Render(scope)
	if err != nil {
		return nil, fmt.Errorf("render config value %s: %w", path, err)
	}
	return rendered, nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
