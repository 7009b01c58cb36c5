package mapping

import (
	"regexp"
	"strings"

	"github.com/c360studio/relnotes/release"
)

// requiredFallbackSlug always marks a change as needing a release note,
// even when tags.required is unset.
const requiredFallbackSlug = "release-note-required"

// Empty-note policies.
const (
	policySkip       = "skip"
	policySubstitute = "substitute"
)

var checkboxRe = regexp.MustCompile(`(?m)^\s*[-*]\s*\[[xX]\]\s*(.+)$`)

// tagEntry is one row of the slug→canonical table. The table is built once
// at adapter construction and never mutated.
type tagEntry struct {
	canonical string
	drop      bool
}

// buildTagTable derives the slug→canonical table from the tags.definitions
// config map. The entry key is the canonical tag; the slug defaults to the
// lowercased key when not declared.
func buildTagTable(defs map[string]any) map[string]tagEntry {
	table := make(map[string]tagEntry, len(defs))
	for key, v := range defs {
		slug := strings.ToLower(key)
		drop := false
		if m, ok := v.(map[string]any); ok {
			if s, ok := m["slug"].(string); ok && strings.TrimSpace(s) != "" {
				slug = strings.ToLower(strings.TrimSpace(s))
			}
			if d, ok := m["drop"].(bool); ok {
				drop = d
			}
		}
		table[slug] = tagEntry{canonical: key, drop: drop}
	}
	return table
}

// parseRawTags normalizes a raw tags value to lowercase slugs. Accepted
// shapes: a list of label strings, free text containing checkbox markers
// ("- [x] slug"), or a single label string.
func parseRawTags(v any) []string {
	switch tv := v.(type) {
	case nil:
		return nil
	case string:
		if matches := checkboxRe.FindAllStringSubmatch(tv, -1); len(matches) > 0 {
			out := make([]string, 0, len(matches))
			for _, m := range matches {
				if slug := normalizeSlug(m[1]); slug != "" {
					out = append(out, slug)
				}
			}
			return out
		}
		if slug := normalizeSlug(tv); slug != "" {
			return []string{slug}
		}
		return nil
	default:
		labels := release.ParseStrings(v)
		out := make([]string, 0, len(labels))
		for _, label := range labels {
			if slug := normalizeSlug(label); slug != "" {
				out = append(out, slug)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// classifyTags maps raw slugs through the table. display keeps the
// canonical tags shown on the change (drop:true entries hidden); all keeps
// every matched canonical tag for inclusion/exclusion decisions. Unmapped
// raw tags are dropped. Both lists preserve raw order, deduplicated.
func classifyTags(raw []string, table map[string]tagEntry) (display, all []string) {
	seen := make(map[string]bool, len(raw))
	for _, slug := range raw {
		entry, ok := table[slug]
		if !ok || seen[entry.canonical] {
			continue
		}
		seen[entry.canonical] = true
		all = append(all, entry.canonical)
		if !entry.drop {
			display = append(display, entry.canonical)
		}
	}
	return display, all
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func intersects(items []string, set map[string]bool) bool {
	for _, item := range items {
		if set[item] {
			return true
		}
	}
	return false
}
