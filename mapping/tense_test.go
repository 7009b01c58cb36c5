package mapping

import "testing"

func TestConvertTense(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		tense string
		want  string
	}{
		{name: "present to past", text: "Fix login timeout", tense: "past", want: "Fixed login timeout"},
		{name: "lowercase stays lowercase", text: "add retry budget", tense: "past", want: "added retry budget"},
		{name: "past to present", text: "Added retry budget", tense: "present", want: "Add retry budget"},
		{name: "irregular verb", text: "Make builds reproducible", tense: "past", want: "Made builds reproducible"},
		{name: "unknown verb unchanged", text: "Tweak the scheduler", tense: "past", want: "Tweak the scheduler"},
		{name: "already in target tense", text: "Fixed login timeout", tense: "past", want: "Fixed login timeout"},
		{name: "unknown tense unchanged", text: "Fix login timeout", tense: "future", want: "Fix login timeout"},
		{name: "single word", text: "Fix", tense: "past", want: "Fixed"},
		{name: "empty", text: "", tense: "past", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertTense(tt.text, tt.tense); got != tt.want {
				t.Errorf("convertTense(%q, %q) = %q, want %q", tt.text, tt.tense, got, tt.want)
			}
		})
	}
}
