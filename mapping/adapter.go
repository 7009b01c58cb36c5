package mapping

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/relnotes/config"
	"github.com/c360studio/relnotes/query"
	"github.com/c360studio/relnotes/release"
	"github.com/c360studio/relnotes/render"
	"github.com/c360studio/relnotes/sandbox"
)

// transformContextNames are the values a code transform may reference.
var transformContextNames = []string{"value", "config", "item"}

// Adapter maps raw tracker payloads onto release.Change records per one
// mapping definition. Everything configurable is resolved and compiled at
// construction: query languages and template engines are validated (fatal
// when unknown), transforms are compiled, and the tag table is built. The
// adapter is read-only afterwards, so per-item processing shares no mutable
// state across items.
type Adapter struct {
	settings *config.Settings
	def      *Definition
	queries  *query.Registry
	engines  *render.Registry
	logger   *slog.Logger
	timeout  time.Duration
	env      map[string]string

	language  string
	engine    string
	configMap map[string]any
	pathScope map[string]any
	fields    []*compiledField

	notePattern     *regexp.Regexp
	headlinePattern *regexp.Regexp
	noteSection     string
	emptyNote       string
	placeholder     string
	tense           string

	tagTable map[string]tagEntry
	include  map[string]bool
	exclude  map[string]bool
	required map[string]bool
}

// compiledField is one output field with everything pre-compiled.
type compiledField struct {
	name     string
	language string
	rawPath  string
	path     render.Template
	code     *sandbox.Expression
	tmpl     render.Template
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithQueries sets the query language registry.
func WithQueries(reg *query.Registry) AdapterOption {
	return func(a *Adapter) {
		a.queries = reg
	}
}

// WithEngines sets the template engine registry.
func WithEngines(reg *render.Registry) AdapterOption {
	return func(a *Adapter) {
		a.engines = reg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithTimeout sets the sandbox deadline for code transforms.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// WithEnv sets the environment map exposed to templated paths. Without it
// the process environment is used.
func WithEnv(env map[string]string) AdapterOption {
	return func(a *Adapter) {
		a.env = env
	}
}

// NewAdapter builds the adapter for one settings tree and definition.
// Unknown query languages or template engines, bad patterns, and template
// compile failures are fatal here; code transforms that fail validation are
// logged and disabled, leaving their field as a pass-through.
func NewAdapter(settings *config.Settings, def *Definition, opts ...AdapterOption) (*Adapter, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if def == nil {
		return nil, fmt.Errorf("mapping definition is required")
	}

	a := &Adapter{
		settings: settings,
		def:      def,
		queries:  query.NewRegistry(),
		engines:  render.NewRegistry(),
		logger:   slog.Default(),
		timeout:  sandbox.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.env == nil {
		a.env = environMap()
	}

	a.language = def.Language
	if a.language == "" {
		a.language = settings.GetString("mapping.language")
	}
	if _, err := a.queries.Get(a.language); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", def.Name, err)
	}

	a.engine = def.Engine
	if a.engine == "" {
		a.engine = settings.GetString("mapping.engine")
	}
	if _, err := a.engines.Get(a.engine); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", def.Name, err)
	}

	a.configMap = settings.Map()
	a.pathScope = map[string]any{
		"config": a.configMap,
		"origin": a.configMap["origin"],
		"env":    a.env,
	}

	if p := settings.GetString("notes.pattern"); p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("notes.pattern: %w", err)
		}
		a.notePattern = re
	}
	if p := settings.GetString("notes.headline_pattern"); p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("notes.headline_pattern: %w", err)
		}
		a.headlinePattern = re
	}
	a.noteSection = settings.GetString("notes.section")
	a.emptyNote = settings.GetString("notes.empty_note")
	a.placeholder = settings.GetString("notes.placeholder")
	a.tense = settings.GetString("notes.tense")

	a.tagTable = buildTagTable(settings.GetMap("tags.definitions"))
	a.include = toSet(settings.GetStringSlice("tags.include"))
	a.exclude = toSet(settings.GetStringSlice("tags.exclude"))
	required := settings.GetStringSlice("tags.required")
	slugs := make([]string, 0, len(required)+1)
	for _, s := range required {
		if slug := normalizeSlug(s); slug != "" {
			slugs = append(slugs, slug)
		}
	}
	slugs = append(slugs, requiredFallbackSlug)
	a.required = toSet(slugs)

	for _, f := range def.Fields {
		cf, err := a.compileField(f)
		if err != nil {
			return nil, err
		}
		a.fields = append(a.fields, cf)
	}

	return a, nil
}

func (a *Adapter) compileField(f Field) (*compiledField, error) {
	cf := &compiledField{name: f.Name, rawPath: f.Path, language: f.Language}
	if cf.language == "" {
		cf.language = a.language
	} else if _, err := a.queries.Get(cf.language); err != nil {
		return nil, fmt.Errorf("mapping %s: field %s: %w", a.def.Name, f.Name, err)
	}

	if strings.Contains(f.Path, "{{") {
		tmpl, err := a.engines.Compile(a.def.Name+"."+f.Name+".path", a.engine, f.Path)
		if err != nil {
			return nil, err
		}
		cf.path = tmpl
	}

	if f.Code != "" {
		expr, err := sandbox.Validate(f.Code, transformContextNames)
		if err != nil {
			a.logger.Warn("transform rejected, field passes through",
				slog.String("mapping", a.def.Name),
				slog.String("field", f.Name),
				slog.String("error", err.Error()))
		} else {
			cf.code = expr
		}
	}

	if f.Template != "" {
		tmpl, err := a.engines.Compile(a.def.Name+"."+f.Name, a.engine, f.Template)
		if err != nil {
			return nil, err
		}
		cf.tmpl = tmpl
	}
	return cf, nil
}

// Release maps a raw payload into a Release. Items are processed strictly
// in payload order; a failing item is logged and dropped, the rest
// continue. Every log line of one run shares a run id.
func (a *Adapter) Release(payload any) (*release.Release, error) {
	logger := a.logger.With(slog.String("run", uuid.NewString()))

	items, err := a.selectItems(payload)
	if err != nil {
		return nil, err
	}

	code := a.settings.GetString("release.code")
	dateText := a.settings.GetString("release.date")
	commit := a.settings.GetString("release.commit")

	memo, err := a.settings.RenderDeferred("release.memo", map[string]any{
		"config": a.configMap,
		"release": map[string]any{
			"code":   code,
			"date":   dateText,
			"commit": commit,
		},
	})
	if err != nil {
		logger.Warn("memo render failed", slog.String("error", err.Error()))
		memo = ""
	}

	rel := release.New(code, parseDate(dateText), commit, memo)
	for i, item := range items {
		change, err := a.change(logger, item)
		if err != nil {
			logger.Warn("dropping item",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		if change == nil {
			continue
		}
		rel.AddChange(change)
	}

	logger.Info("mapped release",
		slog.String("code", code),
		slog.Int("items", len(items)),
		slog.Int("changes", rel.ChangeCount()))
	return rel, nil
}

// selectItems finds the item array: a payload that already is an array is
// used as-is, otherwise the definition's _items path selects it.
func (a *Adapter) selectItems(payload any) ([]any, error) {
	if items, ok := payload.([]any); ok {
		return items, nil
	}
	if a.def.Items == "" {
		return nil, fmt.Errorf("mapping %s: payload is not an item array and no _items path is configured", a.def.Name)
	}
	v, err := a.queries.Extract(payload, a.def.Items, a.language)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: select items at %q: %w", a.def.Name, a.def.Items, err)
	}
	switch items := v.(type) {
	case nil:
		return nil, fmt.Errorf("mapping %s: payload has no items at %q", a.def.Name, a.def.Items)
	case []any:
		return items, nil
	default:
		return []any{items}, nil
	}
}

// change maps one raw record. A nil, nil return means the record was
// filtered out by the inclusion decision.
func (a *Adapter) change(logger *slog.Logger, item any) (*release.Change, error) {
	record, ok := item.(map[string]any)
	if !ok {
		return nil, &MalformedChangeError{Reason: fmt.Sprintf("item is %T, not an object", item)}
	}

	fields := make(map[string]any, len(a.fields))
	for _, f := range a.fields {
		if value := a.fieldValue(logger, f, record); value != nil {
			fields[f.name] = value
		}
	}

	note := a.noteText(fields["note"])
	note = applyNotePattern(a.notePattern, note)

	headline := strings.TrimSpace(release.Stringify(fields["headline"]))
	if h, rest := extractHeadline(a.headlinePattern, note); h != "" {
		headline, note = h, rest
	}

	rawTags := parseRawTags(fields["tags"])
	display, canonical := classifyTags(rawTags, a.tagTable)

	if a.emptyNote == policySubstitute && note == "" && intersects(rawTags, a.required) {
		note = a.placeholder
	}

	if !a.keep(note, canonical, rawTags) {
		logger.Debug("change filtered out",
			slog.String("ticket", release.Stringify(fields["ticket_id"])),
			slog.Any("tags", canonical))
		return nil, nil
	}

	ticketID := strings.TrimSpace(release.Stringify(fields["ticket_id"]))
	summary := strings.TrimSpace(release.Stringify(fields["summary"]))
	if ticketID == "" && summary == "" {
		return nil, &MalformedChangeError{Reason: "record has neither ticket_id nor summary"}
	}
	if fields["part"] != nil && fields["parts"] != nil {
		return nil, &MalformedChangeError{Reason: "record sets both part and parts"}
	}
	parts := release.ParseStrings(fields["parts"])
	if parts == nil {
		parts = release.ParseStrings(fields["part"])
	}

	change := &release.Change{
		TicketID: ticketID,
		Type:     strings.TrimSpace(release.Stringify(fields["type"])),
		Summary:  summary,
		Headline: headline,
		Note:     note,
		Tags:     display,
		Parts:    parts,
		Lead:     strings.TrimSpace(release.Stringify(fields["lead"])),
		Authors:  release.ParseAuthors(fields["authors"]),
		Links:    release.ParseLinks(fields["links"]),
		Raw:      record,
	}
	change.ID = a.changeID(logger, fields, change)
	return change, nil
}

// keep applies the inclusion decision, first match wins: exclusion drops,
// a non-empty note keeps, inclusion keeps, the skip policy drops required
// changes, the substitute policy keeps, everything else drops.
func (a *Adapter) keep(note string, canonical, raw []string) bool {
	if intersects(canonical, a.exclude) {
		return false
	}
	if note != "" {
		return true
	}
	if intersects(canonical, a.include) {
		return true
	}
	if a.emptyNote == policySkip && intersects(raw, a.required) {
		return false
	}
	if a.emptyNote == policySubstitute {
		return true
	}
	return false
}

// fieldValue runs the per-field pipeline: render the templated path,
// extract, apply at most one transform, then table-driven post-processing.
// Failures here are per-item: they log and degrade, never abort the batch.
func (a *Adapter) fieldValue(logger *slog.Logger, f *compiledField, record map[string]any) any {
	path := f.rawPath
	if f.path != nil {
		rendered, err := f.path.Render(a.pathScope)
		if err != nil {
			logger.Warn("path template failed",
				slog.String("field", f.name),
				slog.String("error", err.Error()))
			return nil
		}
		path = rendered
	}
	if path == "" {
		return nil
	}

	value, err := a.queries.Extract(record, path, f.language)
	if err != nil {
		logger.Warn("path extraction failed",
			slog.String("field", f.name),
			slog.String("expr", path),
			slog.String("error", err.Error()))
		return nil
	}

	switch {
	case f.code != nil:
		out, err := f.code.Eval(map[string]any{
			"value":  value,
			"config": a.configMap,
			"item":   record,
		}, a.timeout)
		if err != nil {
			logger.Warn("code transform failed, keeping original value",
				slog.String("field", f.name),
				slog.String("error", err.Error()))
		} else {
			value = out
		}
	case f.tmpl != nil:
		out, err := f.tmpl.Render(map[string]any{"value": value})
		if err != nil {
			logger.Warn("template transform failed, keeping original value",
				slog.String("field", f.name),
				slog.String("error", err.Error()))
		} else {
			value = out
		}
	}

	if a.tense != "" && tenseFields[f.name] {
		if s, ok := value.(string); ok {
			value = convertTense(s, a.tense)
		}
	}
	return value
}

// changeID renders the configured id template against the assembled field
// map plus release metadata. An absent template or an empty render leaves
// the ID unset.
func (a *Adapter) changeID(logger *slog.Logger, fields map[string]any, c *release.Change) string {
	ctx := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		ctx[k] = v
	}
	ctx["ticket_id"] = c.TicketID
	ctx["note"] = c.Note
	ctx["headline"] = c.Headline
	ctx["tags"] = c.Tags
	ctx["release"] = map[string]any{
		"code":   a.settings.GetString("release.code"),
		"date":   a.settings.GetString("release.date"),
		"commit": a.settings.GetString("release.commit"),
	}

	id, err := a.settings.RenderDeferred("release.id_template", ctx)
	if err != nil {
		logger.Warn("change id render failed", slog.String("error", err.Error()))
		return ""
	}
	return strings.TrimSpace(id)
}

func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
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
