package render

import (
	"github.com/cbroglie/mustache"
)

// Mustache is the logic-restricted default engine. Templates can only
// interpolate and loop over the context; they cannot call functions or
// reach outside the supplied values, which is why untagged config fields
// default to it.
type Mustache struct{}

// NewMustache creates the mustache engine.
func NewMustache() *Mustache {
	return &Mustache{}
}

// Name returns "mustache".
func (e *Mustache) Name() string { return "mustache" }

// Compile parses src as a mustache template.
func (e *Mustache) Compile(src string) (Template, error) {
	tmpl, err := mustache.ParseString(src)
	if err != nil {
		return nil, err
	}
	return &mustacheTemplate{tmpl: tmpl}, nil
}

type mustacheTemplate struct {
	tmpl *mustache.Template
}

func (t *mustacheTemplate) Render(ctx map[string]any) (string, error) {
	return t.tmpl.Render(ctx)
}
