package mapping

import (
	"regexp"
	"strings"

	"github.com/c360studio/relnotes/release"
	"github.com/c360studio/relnotes/richtext"
)

// noteText turns the mapped note value into plain markdown. Rich documents
// (doc trees, HTML) are flattened first; when a section heading is
// configured, only that section of a flattened note is kept — a rich note
// without the section has no release-note material and comes back empty.
// Plain strings pass through; other structured values yield nothing.
func (a *Adapter) noteText(v any) string {
	flat, ok := richtext.Flatten(v)
	if !ok {
		switch val := v.(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(val)
		case map[string]any, []any:
			return ""
		default:
			return strings.TrimSpace(release.Stringify(val))
		}
	}
	if a.noteSection != "" {
		body, found := richtext.Section(flat, a.noteSection)
		if !found {
			return ""
		}
		return body
	}
	return flat
}

// applyNotePattern extracts the note body via the configured capture
// pattern: a group named "note" is preferred, else the first group, else
// the whole match. A configured pattern that does not match clears the
// note so the empty-note policy applies downstream.
func applyNotePattern(re *regexp.Regexp, note string) string {
	if re == nil || note == "" {
		return note
	}
	m := re.FindStringSubmatch(note)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(captureGroup(re, m, "note"))
}

// extractHeadline applies the headline pattern: first as a block match
// against the whole note, then line by line. On a match the headline comes
// from a group named "headline" (else first group, else whole match) and
// the matched segment is removed from the note body.
func extractHeadline(re *regexp.Regexp, note string) (headline, remaining string) {
	if re == nil || note == "" {
		return "", note
	}

	if loc := re.FindStringIndex(note); loc != nil {
		m := re.FindStringSubmatch(note)
		headline = strings.TrimSpace(captureGroup(re, m, "headline"))
		remaining = strings.TrimSpace(note[:loc[0]] + note[loc[1]:])
		return headline, remaining
	}

	lines := strings.Split(note, "\n")
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headline = strings.TrimSpace(captureGroup(re, m, "headline"))
		rest := make([]string, 0, len(lines)-1)
		rest = append(rest, lines[:i]...)
		rest = append(rest, lines[i+1:]...)
		remaining = strings.TrimSpace(strings.Join(rest, "\n"))
		return headline, remaining
	}
	return "", note
}

func captureGroup(re *regexp.Regexp, m []string, name string) string {
	if idx := re.SubexpIndex(name); idx >= 0 && idx < len(m) {
		return m[idx]
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}
