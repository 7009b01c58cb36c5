package richtext

import "strings"

// Section extracts the body under the named heading: everything after the
// matching heading line up to the next heading of equal or higher level.
// The heading text match is case-insensitive. ok is false when no heading
// matches.
func Section(markdown, heading string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(heading))
	if want == "" {
		return "", false
	}

	lines := strings.Split(markdown, "\n")
	start := -1
	level := 0
	for i, line := range lines {
		lvl, text := headingLine(line)
		if lvl == 0 {
			continue
		}
		if start == -1 {
			if strings.ToLower(text) == want {
				start = i + 1
				level = lvl
			}
			continue
		}
		if lvl <= level {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n")), true
		}
	}
	if start == -1 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n")), true
}

// headingLine returns the ATX heading level and text, or 0 for other lines.
func headingLine(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, ""
	}
	return level, strings.TrimSpace(rest)
}
