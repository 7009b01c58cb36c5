package render

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// GoTemplate is the generic embedded-expression engine: text/template with
// the sprig function map. The env and expandenv functions are removed so
// templates cannot read the process environment; anything environment-like
// must come in through the render context.
type GoTemplate struct {
	funcs template.FuncMap
}

// NewGoTemplate creates the gotemplate engine.
func NewGoTemplate() *GoTemplate {
	funcs := sprig.TxtFuncMap()
	delete(funcs, "env")
	delete(funcs, "expandenv")

	return &GoTemplate{funcs: funcs}
}

// Name returns "gotemplate".
func (e *GoTemplate) Name() string { return "gotemplate" }

// Compile parses src as a text/template. Missing context keys render as
// zero values instead of failing.
func (e *GoTemplate) Compile(src string) (Template, error) {
	tmpl, err := template.New("field").Funcs(e.funcs).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, err
	}
	return &goTemplate{tmpl: tmpl}, nil
}

type goTemplate struct {
	tmpl *template.Template
}

func (t *goTemplate) Render(ctx map[string]any) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}
