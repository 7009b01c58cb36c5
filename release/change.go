// Package release provides the release-notes domain model: a Release owning
// an ordered list of Change records, plus the derived views the rendering
// stage consumes.
package release

import (
	"fmt"
	"strings"
)

// Well-known canonical tag slugs. Predicates on Change match these
// case-sensitively against the canonical tag list.
const (
	TagBreaking    = "breaking-change"
	TagSecurity    = "security"
	TagDeprecation = "deprecation"
	TagHighlight   = "highlight"
)

// Author identifies a person credited on a change.
type Author struct {
	// User is the tracker account or display name.
	User string `yaml:"user" json:"user"`
	// Memo is an optional free-form note (e.g. "reviewer", an email).
	Memo string `yaml:"memo,omitempty" json:"memo,omitempty"`
}

// Link is a reference attached to a change. Exactly the fields present in
// the source record are kept; none are required.
type Link struct {
	// Text is the human-readable label.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Xref is a cross-reference to another tracker item (e.g. a ticket key).
	Xref string `yaml:"xref,omitempty" json:"xref,omitempty"`
	// Href is an absolute URL.
	Href string `yaml:"href,omitempty" json:"href,omitempty"`
}

// Change is one mapped tracker record. Changes are constructed once by the
// mapping adapter and are immutable afterwards, except for the Release
// back-reference attached when the owning Release adopts them.
type Change struct {
	TicketID string
	Type     string
	Summary  string
	Headline string
	Note     string

	// Tags holds the displayed canonical tag slugs, in classification order,
	// deduplicated. Tags hidden by a drop:true definition are not listed here.
	Tags []string

	// Parts names the affected product areas. The legacy singular "part"
	// input form is normalized into this slice by the adapter.
	Parts []string

	Lead    string
	Authors []Author
	Links   []Link

	// ID is the derived change identifier, empty when no id-template is
	// configured or the template rendered empty.
	ID string

	// Raw is the original tracker record, kept for downstream rules that
	// inspect fields the mapping did not surface.
	Raw map[string]any

	release *Release
}

// Release returns the owning release, or nil when the change has not been
// adopted yet.
func (c *Change) Release() *Release { return c.release }

// HasTag reports whether slug is among the displayed canonical tags.
// Matching is case-sensitive on the canonical slug.
func (c *Change) HasTag(slug string) bool {
	for _, t := range c.Tags {
		if t == slug {
			return true
		}
	}
	return false
}

// IsBreaking reports whether the change carries the breaking-change tag.
func (c *Change) IsBreaking() bool { return c.HasTag(TagBreaking) }

// IsSecurity reports whether the change carries the security tag.
func (c *Change) IsSecurity() bool { return c.HasTag(TagSecurity) }

// IsDeprecation reports whether the change carries the deprecation tag.
func (c *Change) IsDeprecation() bool { return c.HasTag(TagDeprecation) }

// IsHighlight reports whether the change carries the highlight tag.
func (c *Change) IsHighlight() bool { return c.HasTag(TagHighlight) }

// ToMap returns the change as a plain nested map for the rendering stage.
// Empty fields are omitted; the raw record and the release back-reference
// are not included.
func (c *Change) ToMap() map[string]any {
	m := map[string]any{}
	if c.TicketID != "" {
		m["ticket_id"] = c.TicketID
	}
	if c.Type != "" {
		m["type"] = c.Type
	}
	if c.Summary != "" {
		m["summary"] = c.Summary
	}
	if c.Headline != "" {
		m["headline"] = c.Headline
	}
	if c.Note != "" {
		m["note"] = c.Note
	}
	if len(c.Tags) > 0 {
		m["tags"] = append([]string(nil), c.Tags...)
	}
	if len(c.Parts) > 0 {
		m["parts"] = append([]string(nil), c.Parts...)
	}
	if c.Lead != "" {
		m["lead"] = c.Lead
	}
	if len(c.Authors) > 0 {
		authors := make([]map[string]any, 0, len(c.Authors))
		for _, a := range c.Authors {
			am := map[string]any{"user": a.User}
			if a.Memo != "" {
				am["memo"] = a.Memo
			}
			authors = append(authors, am)
		}
		m["authors"] = authors
	}
	if len(c.Links) > 0 {
		links := make([]map[string]any, 0, len(c.Links))
		for _, l := range c.Links {
			lm := map[string]any{}
			if l.Text != "" {
				lm["text"] = l.Text
			}
			if l.Xref != "" {
				lm["xref"] = l.Xref
			}
			if l.Href != "" {
				lm["href"] = l.Href
			}
			links = append(links, lm)
		}
		m["links"] = links
	}
	if c.ID != "" {
		m["id"] = c.ID
	}
	return m
}

// ParseAuthors normalizes a loosely typed authors value into []Author.
// Accepted shapes: a single string, a map with user/name and optional
// memo/email keys, or a list of either. Entries that yield no user are
// skipped.
func ParseAuthors(v any) []Author {
	switch av := v.(type) {
	case nil:
		return nil
	case string:
		if a, ok := parseAuthor(av); ok {
			return []Author{a}
		}
		return nil
	case []any:
		authors := make([]Author, 0, len(av))
		for _, item := range av {
			if a, ok := parseAuthor(item); ok {
				authors = append(authors, a)
			}
		}
		if len(authors) == 0 {
			return nil
		}
		return authors
	default:
		if a, ok := parseAuthor(v); ok {
			return []Author{a}
		}
		return nil
	}
}

func parseAuthor(v any) (Author, bool) {
	switch av := v.(type) {
	case string:
		s := strings.TrimSpace(av)
		if s == "" {
			return Author{}, false
		}
		return Author{User: s}, true
	case map[string]any:
		a := Author{
			User: firstString(av, "user", "name"),
			Memo: firstString(av, "memo", "email"),
		}
		if a.User == "" {
			return Author{}, false
		}
		return a, true
	default:
		return Author{}, false
	}
}

// ParseLinks normalizes a loosely typed links value into []Link. A bare
// string becomes an Href when it looks like a URL, an Xref otherwise; maps
// keep their text/xref/href keys. Entries with no usable field are skipped.
func ParseLinks(v any) []Link {
	switch lv := v.(type) {
	case nil:
		return nil
	case []any:
		links := make([]Link, 0, len(lv))
		for _, item := range lv {
			if l, ok := parseLink(item); ok {
				links = append(links, l)
			}
		}
		if len(links) == 0 {
			return nil
		}
		return links
	default:
		if l, ok := parseLink(v); ok {
			return []Link{l}
		}
		return nil
	}
}

func parseLink(v any) (Link, bool) {
	switch lv := v.(type) {
	case string:
		s := strings.TrimSpace(lv)
		if s == "" {
			return Link{}, false
		}
		if strings.Contains(s, "://") {
			return Link{Href: s}, true
		}
		return Link{Xref: s}, true
	case map[string]any:
		l := Link{
			Text: firstString(lv, "text", "title"),
			Xref: firstString(lv, "xref", "key"),
			Href: firstString(lv, "href", "url"),
		}
		if l.Text == "" && l.Xref == "" && l.Href == "" {
			return Link{}, false
		}
		return l, true
	default:
		return Link{}, false
	}
}

// ParseStrings normalizes a loosely typed value into a string slice: a bare
// scalar becomes a single-element slice, list elements are stringified, and
// empty elements are dropped.
func ParseStrings(v any) []string {
	switch sv := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(sv)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(sv))
		for _, item := range sv {
			s := strings.TrimSpace(Stringify(item))
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		out := make([]string, 0, len(sv))
		for _, s := range sv {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		s := strings.TrimSpace(Stringify(v))
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// Stringify renders a scalar value as a string. Maps and slices are not
// flattened; they fall through to the fmt representation.
func Stringify(v any) string {
	switch sv := v.(type) {
	case nil:
		return ""
	case string:
		return sv
	case bool:
		if sv {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", sv)
	case int64:
		return fmt.Sprintf("%d", sv)
	case float64:
		if sv == float64(int64(sv)) {
			return fmt.Sprintf("%d", int64(sv))
		}
		return fmt.Sprintf("%g", sv)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := strings.TrimSpace(Stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}
