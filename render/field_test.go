package render

import (
	"errors"
	"testing"
)

func TestFieldDeferredRender(t *testing.T) {
	r := NewRegistry()

	f, err := NewField(r, "release.memo", "Cut from {{release.commit}}", "mustache", false, true)
	if err != nil {
		t.Fatalf("NewField() error: %v", err)
	}

	if !f.Deferred {
		t.Error("field should be deferred")
	}
	if f.Raw != "Cut from {{release.commit}}" {
		t.Errorf("Raw = %q, deferred fields keep their source", f.Raw)
	}

	// Compiled once, rendered against different per-stage contexts.
	for _, commit := range []string{"abc123", "def456"} {
		got, err := f.Render(map[string]any{"release": map[string]any{"commit": commit}})
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if want := "Cut from " + commit; got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	}
}

func TestFieldCompileFailure(t *testing.T) {
	r := NewRegistry()

	_, err := NewField(r, "release.memo", "{{#a}}", "mustache", false, true)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *CompileError", err)
	}
	if ce.Path != "release.memo" {
		t.Errorf("Path = %q", ce.Path)
	}
}

func TestFieldTaggedEngine(t *testing.T) {
	r := NewRegistry()

	f, err := NewField(r, "x", `{{ .name }}`, "gotemplate", true, true)
	if err != nil {
		t.Fatalf("NewField() error: %v", err)
	}
	if !f.Tagged {
		t.Error("Tagged should be set when the engine came from an explicit tag")
	}

	got, err := f.Render(map[string]any{"name": "relnotes"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "relnotes" {
		t.Errorf("Render() = %q", got)
	}
}
