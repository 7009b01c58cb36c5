// Package richtext flattens rich-document note bodies into plain markdown.
//
// Issue trackers hand back note fields in whatever shape their editor
// produced: a structured document tree ({"type": "doc", "content": [...]}),
// an HTML fragment, or already-plain text. Flatten recognizes the first two
// and converts them; Section then pulls a single named heading's body out of
// the flattened markdown.
package richtext

import (
	"strconv"
	"strings"
)

// Flatten converts a known rich-document value into markdown. It recognizes
// document trees (a map with type "doc" and a content array) and strings
// containing HTML markup. Plain values are not rich documents; for those ok
// is false and the caller keeps the original.
func Flatten(v any) (string, bool) {
	if node, ok := docTree(v); ok {
		return strings.TrimSpace(flattenBlocks(contentOf(node))), true
	}
	if s, ok := v.(string); ok && LooksLikeHTML(s) {
		markdown, err := FromHTML(s)
		if err != nil {
			return "", false
		}
		return markdown, true
	}
	return "", false
}

func docTree(v any) (map[string]any, bool) {
	node, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if nodeType(node) != "doc" {
		return nil, false
	}
	if _, ok := node["content"]; !ok {
		return nil, false
	}
	return node, true
}

// flattenBlocks renders a sequence of block nodes joined by blank lines.
func flattenBlocks(content []any) string {
	var parts []string
	for _, child := range content {
		node, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if s := flattenBlock(node); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func flattenBlock(node map[string]any) string {
	switch nodeType(node) {
	case "paragraph":
		return flattenInline(contentOf(node))
	case "heading":
		level := intAttr(node, "level", 1)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + flattenInline(contentOf(node))
	case "bulletList":
		return flattenList(node, false)
	case "orderedList":
		return flattenList(node, true)
	case "codeBlock":
		lang, _ := attr(node, "language").(string)
		return "```" + lang + "\n" + rawText(contentOf(node)) + "\n```"
	case "blockquote":
		lines := strings.Split(flattenBlocks(contentOf(node)), "\n")
		for i, line := range lines {
			if line == "" {
				lines[i] = ">"
			} else {
				lines[i] = "> " + line
			}
		}
		return strings.Join(lines, "\n")
	case "rule":
		return "---"
	case "text", "hardBreak":
		// Inline node directly under a block container.
		return flattenInline([]any{node})
	default:
		// Unknown container: descend so its text is not silently lost.
		return flattenBlocks(contentOf(node))
	}
}

func flattenList(node map[string]any, ordered bool) string {
	var lines []string
	for i, child := range contentOf(node) {
		item, ok := child.(map[string]any)
		if !ok {
			continue
		}
		marker := "- "
		if ordered {
			marker = strconv.Itoa(i+1) + ". "
		}
		indent := strings.Repeat(" ", len(marker))
		for j, line := range strings.Split(flattenItem(item), "\n") {
			switch {
			case j == 0:
				lines = append(lines, marker+line)
			case line == "":
				lines = append(lines, "")
			default:
				lines = append(lines, indent+line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// flattenItem renders a list item's blocks joined by single newlines so
// lists stay tight.
func flattenItem(item map[string]any) string {
	var parts []string
	for _, child := range contentOf(item) {
		node, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if s := flattenBlock(node); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func flattenInline(content []any) string {
	var b strings.Builder
	for _, child := range content {
		node, ok := child.(map[string]any)
		if !ok {
			continue
		}
		switch nodeType(node) {
		case "text":
			b.WriteString(markedText(node))
		case "hardBreak":
			b.WriteString("\n")
		case "mention", "emoji":
			if t, ok := attr(node, "text").(string); ok {
				b.WriteString(t)
			}
		default:
			b.WriteString(flattenInline(contentOf(node)))
		}
	}
	return b.String()
}

// markedText wraps a text node's value in its marks. Link applies last so
// emphasis stays inside the bracket text.
func markedText(node map[string]any) string {
	text, _ := node["text"].(string)
	marks, _ := node["marks"].([]any)
	href := ""
	for _, m := range marks {
		mark, ok := m.(map[string]any)
		if !ok {
			continue
		}
		switch nodeType(mark) {
		case "strong":
			text = "**" + text + "**"
		case "em":
			text = "*" + text + "*"
		case "code":
			text = "`" + text + "`"
		case "link":
			if h, ok := attr(mark, "href").(string); ok {
				href = h
			}
		}
	}
	if href != "" {
		text = "[" + text + "](" + href + ")"
	}
	return text
}

// rawText concatenates text values without marks, for code blocks.
func rawText(content []any) string {
	var b strings.Builder
	for _, child := range content {
		node, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := node["text"].(string); ok {
			b.WriteString(t)
			continue
		}
		b.WriteString(rawText(contentOf(node)))
	}
	return b.String()
}

func nodeType(node map[string]any) string {
	t, _ := node["type"].(string)
	return t
}

func contentOf(node map[string]any) []any {
	c, _ := node["content"].([]any)
	return c
}

func attr(node map[string]any, key string) any {
	attrs, ok := node["attrs"].(map[string]any)
	if !ok {
		return nil
	}
	return attrs[key]
}

func intAttr(node map[string]any, key string, fallback int) int {
	switch v := attr(node, key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
