package mapping

import (
	"strings"
	"testing"
)

func TestLoadDefinition(t *testing.T) {
	doc := []byte(`
_items: "$.issues"
_language: jsonpath
_engine: mustache
docs: |
  Everything under docs is ignored.
_notes: ignored too
ticket_id: "$.key"
type:
  path: "$.fields.issuetype.name"
  code: lower(str(value))
summary:
  path: "$.fields.summary"
  template: "{{value}}"
lead:
  path: "$.fields.assignee.displayName"
  language: jmespath
`)

	def, err := LoadDefinition("jira", doc)
	if err != nil {
		t.Fatalf("LoadDefinition() error = %v", err)
	}

	if def.Name != "jira" {
		t.Errorf("Name = %q, want jira", def.Name)
	}
	if def.Items != "$.issues" {
		t.Errorf("Items = %q, want $.issues", def.Items)
	}
	if def.Language != "jsonpath" || def.Engine != "mustache" {
		t.Errorf("Language, Engine = %q, %q", def.Language, def.Engine)
	}

	want := []Field{
		{Name: "ticket_id", Path: "$.key"},
		{Name: "type", Path: "$.fields.issuetype.name", Code: "lower(str(value))"},
		{Name: "summary", Path: "$.fields.summary", Template: "{{value}}"},
		{Name: "lead", Path: "$.fields.assignee.displayName", Language: "jmespath"},
	}
	if len(def.Fields) != len(want) {
		t.Fatalf("got %d fields, want %d: %+v", len(def.Fields), len(want), def.Fields)
	}
	for i, f := range def.Fields {
		if f != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestLoadDefinitionAlias(t *testing.T) {
	doc := []byte(`
ticket_id: &key "$.key"
links: *key
`)
	def, err := LoadDefinition("test", doc)
	if err != nil {
		t.Fatalf("LoadDefinition() error = %v", err)
	}
	if len(def.Fields) != 2 || def.Fields[1].Path != "$.key" {
		t.Errorf("alias field = %+v", def.Fields)
	}
}

func TestLoadDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "both transforms",
			doc: `
summary:
  path: "$.title"
  code: upper(str(value))
  template: "{{value}}"
`,
			want: "both code and template",
		},
		{
			name: "no output fields",
			doc:  `_items: "$.issues"`,
			want: "no output fields",
		},
		{
			name: "root is a sequence",
			doc:  "- one\n- two\n",
			want: "root must be a mapping",
		},
		{
			name: "field is a sequence",
			doc:  "summary:\n  - a\n  - b\n",
			want: "must be a path string or a mapping",
		},
		{
			name: "invalid yaml",
			doc:  "summary: [unclosed",
			want: "parse mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinition("test", []byte(tt.doc))
			if err == nil {
				t.Fatal("LoadDefinition() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}
