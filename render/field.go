package render

// Field is a template-bearing configuration value. Deferred fields are
// compiled once at load time and rendered later against a per-stage
// context; non-deferred fields render immediately during loading and the
// rendered string replaces the field in the settings tree, so they do not
// normally survive as Field values.
type Field struct {
	// Raw is the original template source.
	Raw string
	// Engine names the engine the field was compiled with.
	Engine string
	// Tagged records that an explicit value tag selected the engine,
	// which wins over the schema's default engine for the path.
	Tagged bool
	// Deferred marks a compile-now-render-later field. Only a schema
	// templating directive can set it.
	Deferred bool

	tmpl Template
}

// NewField compiles raw with the named engine and returns the field
// handle. Compilation failures come back as *CompileError naming path.
func NewField(reg *Registry, path, raw, engine string, tagged, deferred bool) (*Field, error) {
	tmpl, err := reg.Compile(path, engine, raw)
	if err != nil {
		return nil, err
	}
	return &Field{
		Raw:      raw,
		Engine:   engine,
		Tagged:   tagged,
		Deferred: deferred,
		tmpl:     tmpl,
	}, nil
}

// Render renders the compiled template against ctx.
func (f *Field) Render(ctx map[string]any) (string, error) {
	return f.tmpl.Render(ctx)
}
