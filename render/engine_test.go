package render

import (
	"errors"
	"strings"
	"testing"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"mustache", "gotemplate"} {
		t.Run(name, func(t *testing.T) {
			e, err := r.Get(name)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", name, err)
			}
			if e.Name() != name {
				t.Errorf("Name() = %q, want %q", e.Name(), name)
			}
		})
	}

	t.Run("unknown engine", func(t *testing.T) {
		_, err := r.Get("jinja")
		if !errors.Is(err, ErrUnsupportedEngine) {
			t.Errorf("Get(jinja) error = %v, want ErrUnsupportedEngine", err)
		}
	})
}

func TestMustacheRender(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		src  string
		ctx  map[string]any
		want string
	}{
		{
			name: "interpolation",
			src:  "Release {{code}} is out",
			ctx:  map[string]any{"code": "2.4.0"},
			want: "Release 2.4.0 is out",
		},
		{
			name: "dotted lookup",
			src:  "{{release.code}}",
			ctx:  map[string]any{"release": map[string]any{"code": "1.0"}},
			want: "1.0",
		},
		{
			name: "missing variable renders empty",
			src:  "[{{absent}}]",
			ctx:  map[string]any{},
			want: "[]",
		},
		{
			name: "section over list",
			src:  "{{#tags}}{{.}} {{/tags}}",
			ctx:  map[string]any{"tags": []string{"api", "cli"}},
			want: "api cli ",
		},
		{
			name: "plain text passes through",
			src:  "fields.summary",
			ctx:  map[string]any{},
			want: "fields.summary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render("test", "mustache", tt.src, tt.ctx)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestGoTemplateRender(t *testing.T) {
	r := NewRegistry()

	got, err := r.Render("test", "gotemplate", `{{ .code | upper }}-{{ .tags | join "," }}`, map[string]any{
		"code": "rc1",
		"tags": []string{"api", "cli"},
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "RC1-api,cli" {
		t.Errorf("Render() = %q", got)
	}
}

func TestGoTemplateEnvRemoved(t *testing.T) {
	r := NewRegistry()

	// env would read the process environment; it must not be available.
	_, err := r.Compile("test", "gotemplate", `{{ env "HOME" }}`)
	if err == nil {
		t.Fatal("Compile() should reject the env function")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Errorf("error = %T, want *CompileError", err)
	}
}

func TestCompileErrorNamesPath(t *testing.T) {
	r := NewRegistry()

	_, err := r.Compile("release.memo", "mustache", "{{#open}} no close")
	if err == nil {
		t.Fatal("Compile() should fail on an unclosed section")
	}

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *CompileError", err)
	}
	if ce.Path != "release.memo" {
		t.Errorf("Path = %q, want release.memo", ce.Path)
	}
	if ce.Engine != "mustache" {
		t.Errorf("Engine = %q, want mustache", ce.Engine)
	}
	if !strings.Contains(err.Error(), "release.memo") {
		t.Errorf("Error() = %q, should name the path", err.Error())
	}
}

func TestCompileUnknownEngine(t *testing.T) {
	r := NewRegistry()

	_, err := r.Compile("x", "liquid", "{{a}}")
	if !errors.Is(err, ErrUnsupportedEngine) {
		t.Errorf("error = %v, want ErrUnsupportedEngine", err)
	}
}
