package richtext

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

// Pre-compiled regexes; runtime compilation of these against user content
// would be both slow and a ReDoS surface.
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
	htmlTagRe        = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(?:\s[^<>]*?)?/?>`)
)

// Converter turns HTML note fragments into markdown.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates an HTML to markdown converter.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// Convert transforms an HTML fragment to cleaned-up markdown.
func (c *Converter) Convert(content string) (string, error) {
	markdown, err := c.converter.ConvertString(stripNoise(content))
	if err != nil {
		return "", err
	}
	return cleanMarkdown(markdown), nil
}

var defaultConverter = NewConverter()

// FromHTML converts an HTML fragment to markdown using a shared converter.
func FromHTML(content string) (string, error) {
	return defaultConverter.Convert(content)
}

// LooksLikeHTML reports whether s contains element markup. A bare "<" in
// prose does not count; an opening, closing or self-closing tag does.
func LooksLikeHTML(s string) bool {
	return htmlTagRe.MatchString(s)
}

// stripNoise removes non-content elements before conversion.
func stripNoise(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// Fall back to regex cleanup if parsing fails.
		content = scriptRe.ReplaceAllString(content, "")
		return styleRe.ReplaceAllString(content, "")
	}

	removeElements(doc, []string{"script", "style", "noscript", "iframe", "object", "embed"})

	var sb strings.Builder
	html.Render(&sb, doc)
	return sb.String()
}

// removeElements removes all elements with the given tag names.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// cleanMarkdown collapses excessive blank lines and trims line endings.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
