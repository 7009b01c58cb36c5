package richtext

import "testing"

func TestSection(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		heading  string
		expected string
		ok       bool
	}{
		{
			name:     "basic extraction",
			markdown: "## Release Notes\nBody\n## Other\nIgnored",
			heading:  "Release Notes",
			expected: "Body",
			ok:       true,
		},
		{
			name:     "case insensitive",
			markdown: "## Release Notes\nBody\n## Other",
			heading:  "release notes",
			expected: "Body",
			ok:       true,
		},
		{
			name:     "subheadings stay in the body",
			markdown: "## Notes\nIntro\n### Detail\nMore\n## Next\nOut",
			heading:  "Notes",
			expected: "Intro\n### Detail\nMore",
			ok:       true,
		},
		{
			name:     "higher level heading ends the section",
			markdown: "### Notes\nBody\n# Top\nOut",
			heading:  "Notes",
			expected: "Body",
			ok:       true,
		},
		{
			name:     "last section runs to the end",
			markdown: "## First\nA\n## Notes\nB\nC",
			heading:  "Notes",
			expected: "B\nC",
			ok:       true,
		},
		{
			name:     "missing heading",
			markdown: "## First\nA",
			heading:  "Notes",
			ok:       false,
		},
		{
			name:     "empty heading",
			markdown: "## First\nA",
			heading:  "  ",
			ok:       false,
		},
		{
			name:     "hashes without a space are body text",
			markdown: "## Notes\n##not-a-heading\nStill body\n## End",
			heading:  "Notes",
			expected: "##not-a-heading\nStill body",
			ok:       true,
		},
		{
			name:     "empty section body",
			markdown: "## Notes\n## Next\nOut",
			heading:  "Notes",
			expected: "",
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Section(tt.markdown, tt.heading)
			if ok != tt.ok {
				t.Fatalf("Section() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("Section() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHeadingLine(t *testing.T) {
	tests := []struct {
		line  string
		level int
		text  string
	}{
		{line: "# Title", level: 1, text: "Title"},
		{line: "###   Spaced   ", level: 3, text: "Spaced"},
		{line: "  ## Indented", level: 2, text: "Indented"},
		{line: "####### Seven", level: 0, text: ""},
		{line: "#hash", level: 0, text: ""},
		{line: "plain", level: 0, text: ""},
		{line: "", level: 0, text: ""},
	}

	for _, tt := range tests {
		level, text := headingLine(tt.line)
		if level != tt.level || text != tt.text {
			t.Errorf("headingLine(%q) = (%d, %q), want (%d, %q)", tt.line, level, text, tt.level, tt.text)
		}
	}
}
