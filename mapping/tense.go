package mapping

import "strings"

// tenseFields names the output fields the tense conversion applies to. The
// conversion is driven by this table, not hard-coded per field.
var tenseFields = map[string]bool{
	"summary":  true,
	"headline": true,
}

// presentToPast maps the leading verbs that come up in tracker summaries to
// their past forms.
var presentToPast = map[string]string{
	"add":       "added",
	"allow":     "allowed",
	"bump":      "bumped",
	"change":    "changed",
	"correct":   "corrected",
	"deprecate": "deprecated",
	"disable":   "disabled",
	"drop":      "dropped",
	"enable":    "enabled",
	"fix":       "fixed",
	"improve":   "improved",
	"introduce": "introduced",
	"make":      "made",
	"move":      "moved",
	"prevent":   "prevented",
	"refactor":  "refactored",
	"remove":    "removed",
	"rename":    "renamed",
	"resolve":   "resolved",
	"support":   "supported",
	"update":    "updated",
	"upgrade":   "upgraded",
}

var pastToPresent = func() map[string]string {
	m := make(map[string]string, len(presentToPast))
	for present, past := range presentToPast {
		m[past] = present
	}
	return m
}()

// convertTense rewrites the leading verb of text into the target tense
// ("past" or "present"). Unknown verbs and unknown tenses leave the text
// unchanged.
func convertTense(text, tense string) string {
	first, rest, _ := strings.Cut(text, " ")
	var repl string
	switch tense {
	case "past":
		repl = presentToPast[strings.ToLower(first)]
	case "present":
		repl = pastToPresent[strings.ToLower(first)]
	}
	if repl == "" {
		return text
	}
	if first != "" && first[0] >= 'A' && first[0] <= 'Z' {
		repl = strings.ToUpper(repl[:1]) + repl[1:]
	}
	if rest == "" {
		return repl
	}
	return repl + " " + rest
}
