package mapping

import (
	"reflect"
	"testing"
)

func TestBuildTagTable(t *testing.T) {
	defs := map[string]any{
		"breaking-change": map[string]any{"slug": "Breaking", "name": "Breaking Change"},
		"security":        map[string]any{},
		"internal":        map[string]any{"drop": true},
		"highlight":       nil,
	}

	table := buildTagTable(defs)

	tests := []struct {
		slug      string
		canonical string
		drop      bool
	}{
		{"breaking", "breaking-change", false},
		{"security", "security", false},
		{"internal", "internal", true},
		{"highlight", "highlight", false},
	}
	for _, tt := range tests {
		entry, ok := table[tt.slug]
		if !ok {
			t.Errorf("table missing slug %q", tt.slug)
			continue
		}
		if entry.canonical != tt.canonical || entry.drop != tt.drop {
			t.Errorf("table[%q] = %+v, want {%s %t}", tt.slug, entry, tt.canonical, tt.drop)
		}
	}
	// The declared slug replaces the default, it does not add to it.
	if _, ok := table["breaking-change"]; ok {
		t.Error("default slug kept alongside the declared one")
	}
}

func TestParseRawTags(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "label list", in: []any{"Breaking", " security ", ""}, want: []string{"breaking", "security"}},
		{name: "string slice", in: []string{"One", "two"}, want: []string{"one", "two"}},
		{name: "single label", in: "Breaking", want: []string{"breaking"}},
		{
			name: "checkbox text",
			in:   "Please tick what applies:\n- [x] breaking\n- [ ] security\n* [X] Highlight\n",
			want: []string{"breaking", "highlight"},
		},
		{name: "free text without checkboxes", in: "just words", want: []string{"just words"}},
		{name: "blank string", in: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRawTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseRawTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyTags(t *testing.T) {
	table := map[string]tagEntry{
		"breaking":   {canonical: "breaking-change"},
		"security":   {canonical: "security"},
		"internal":   {canonical: "internal", drop: true},
		"noteworthy": {canonical: "highlight"},
		"highlight":  {canonical: "highlight"},
	}

	tests := []struct {
		name        string
		raw         []string
		wantDisplay []string
		wantAll     []string
	}{
		{
			name:        "order and mapping",
			raw:         []string{"security", "breaking"},
			wantDisplay: []string{"security", "breaking-change"},
			wantAll:     []string{"security", "breaking-change"},
		},
		{
			name:        "drop hidden from display only",
			raw:         []string{"internal", "breaking"},
			wantDisplay: []string{"breaking-change"},
			wantAll:     []string{"internal", "breaking-change"},
		},
		{
			name:        "unmapped raw tags vanish",
			raw:         []string{"misc", "breaking"},
			wantDisplay: []string{"breaking-change"},
			wantAll:     []string{"breaking-change"},
		},
		{
			name:        "two slugs one canonical",
			raw:         []string{"noteworthy", "highlight"},
			wantDisplay: []string{"highlight"},
			wantAll:     []string{"highlight"},
		},
		{name: "empty", raw: nil, wantDisplay: nil, wantAll: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display, all := classifyTags(tt.raw, table)
			if !reflect.DeepEqual(display, tt.wantDisplay) {
				t.Errorf("display = %v, want %v", display, tt.wantDisplay)
			}
			if !reflect.DeepEqual(all, tt.wantAll) {
				t.Errorf("all = %v, want %v", all, tt.wantAll)
			}
		})
	}
}
