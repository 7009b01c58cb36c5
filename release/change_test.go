package release

import (
	"reflect"
	"testing"
)

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Author
	}{
		{
			name: "nil",
			in:   nil,
			want: nil,
		},
		{
			name: "bare string",
			in:   "mwalker",
			want: []Author{{User: "mwalker"}},
		},
		{
			name: "map with user and memo",
			in:   map[string]any{"user": "mwalker", "memo": "docs review"},
			want: []Author{{User: "mwalker", Memo: "docs review"}},
		},
		{
			name: "map with name and email fallbacks",
			in:   map[string]any{"name": "M. Walker", "email": "mw@example.com"},
			want: []Author{{User: "M. Walker", Memo: "mw@example.com"}},
		},
		{
			name: "mixed list skips empty entries",
			in:   []any{"ana", map[string]any{"user": "bo"}, "", map[string]any{"memo": "no user"}},
			want: []Author{{User: "ana"}, {User: "bo"}},
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAuthors(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAuthors(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Link
	}{
		{
			name: "url string becomes href",
			in:   "https://tracker.example.com/PROJ-12",
			want: []Link{{Href: "https://tracker.example.com/PROJ-12"}},
		},
		{
			name: "plain string becomes xref",
			in:   "PROJ-12",
			want: []Link{{Xref: "PROJ-12"}},
		},
		{
			name: "map keeps declared fields",
			in:   map[string]any{"text": "design doc", "href": "https://docs.example.com/d"},
			want: []Link{{Text: "design doc", Href: "https://docs.example.com/d"}},
		},
		{
			name: "list drops unusable entries",
			in:   []any{"PROJ-9", map[string]any{}, 42},
			want: []Link{{Xref: "PROJ-9"}, {Xref: "42"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLinks(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLinks(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStrings(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "scalar", in: "api", want: []string{"api"}},
		{name: "list", in: []any{"api", " cli ", ""}, want: []string{"api", "cli"}},
		{name: "numbers stringified", in: []any{1, 2.5}, want: []string{"1", "2.5"}},
		{name: "string slice", in: []string{"a", "", "b"}, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStrings(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStrings(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestChangeTagPredicates(t *testing.T) {
	c := &Change{Tags: []string{TagBreaking, "docs"}}

	if !c.IsBreaking() {
		t.Error("expected IsBreaking() = true")
	}
	if c.IsSecurity() {
		t.Error("expected IsSecurity() = false")
	}
	if !c.HasTag("docs") {
		t.Error("expected HasTag(docs) = true")
	}

	// Canonical slug matching is case-sensitive.
	if c.HasTag("Docs") {
		t.Error("tag matching must be case-sensitive")
	}
}

func TestChangeToMapOmitsEmpty(t *testing.T) {
	c := &Change{
		TicketID: "PROJ-1",
		Summary:  "Added the widget",
		Authors:  []Author{{User: "ana"}},
		Raw:      map[string]any{"key": "PROJ-1"},
	}

	m := c.ToMap()

	if m["ticket_id"] != "PROJ-1" {
		t.Errorf("ticket_id = %v, want PROJ-1", m["ticket_id"])
	}
	for _, absent := range []string{"note", "headline", "tags", "parts", "links", "id", "raw"} {
		if _, ok := m[absent]; ok {
			t.Errorf("ToMap() should omit empty field %q", absent)
		}
	}
	authors, ok := m["authors"].([]map[string]any)
	if !ok || len(authors) != 1 || authors[0]["user"] != "ana" {
		t.Errorf("authors = %v, want single ana entry", m["authors"])
	}
	if _, ok := authors[0]["memo"]; ok {
		t.Error("empty memo should be omitted")
	}
}
