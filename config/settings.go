package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/relnotes/render"
	"github.com/c360studio/relnotes/schema"
)

// Settings is the merged, rendered configuration tree. Accessors take
// dotted paths ("notes.empty_note"); returned maps and slices are copies,
// so callers cannot mutate the tree.
type Settings struct {
	values map[string]any
}

func newSettings(values map[string]any) *Settings {
	return &Settings{values: values}
}

// Get returns the value at a dotted path. Deferred template values come
// back as *render.Field.
func (s *Settings) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = s.values
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString returns the string at path, "" when absent. Deferred fields
// yield their raw template text.
func (s *Settings) GetString(path string) string {
	v, ok := s.Get(path)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case schema.TaggedString:
		return val.Value
	case *render.Field:
		return val.Raw
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetBool returns the bool at path, false when absent or not boolean.
func (s *Settings) GetBool(path string) bool {
	v, ok := s.Get(path)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	}
	return false
}

// GetStringSlice returns the list at path as strings. A single scalar
// promotes to a one-element list; absent or empty values return nil.
func (s *Settings) GetStringSlice(path string) []string {
	v, ok := s.Get(path)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		if len(val) == 0 {
			return nil
		}
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch sv := item.(type) {
			case string:
				out = append(out, sv)
			case schema.TaggedString:
				out = append(out, sv.Value)
			default:
				out = append(out, fmt.Sprintf("%v", sv))
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

// GetMap returns a plain deep copy of the map at path, nil when absent or
// not a map.
func (s *Settings) GetMap(path string) map[string]any {
	v, ok := s.Get(path)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return copyTree(m).(map[string]any)
}

// Map returns the whole settings tree as a plain deep copy: tagged values
// and deferred fields flatten to their raw text.
func (s *Settings) Map() map[string]any {
	return copyTree(s.values).(map[string]any)
}

// RenderDeferred renders the deferred template at path against ctx. Paths
// holding a plain value return it as-is; absent or nil paths return "".
func (s *Settings) RenderDeferred(path string, ctx map[string]any) (string, error) {
	v, ok := s.Get(path)
	if !ok || v == nil {
		return "", nil
	}
	if f, ok := v.(*render.Field); ok {
		out, err := f.Render(ctx)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", path, err)
		}
		return out, nil
	}
	return s.GetString(path), nil
}

func copyTree(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyTree(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyTree(item)
		}
		return out
	case schema.TaggedString:
		return val.Value
	case *render.Field:
		return val.Raw
	default:
		return val
	}
}
