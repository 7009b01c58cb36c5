package mapping

// Built-in mapping definitions for the common tracker origins. Definition
// files loaded from mapping.dir override these by name.
var builtinDefinitions = map[string]string{
	"jira":   jiraDefinition,
	"github": githubDefinition,
}

// jiraDefinition reads a Jira search response ({"issues": [...]}). The
// description arrives as a rich-document tree in newer API versions; the
// note pipeline flattens it.
const jiraDefinition = `_items: "$.issues"
_language: jsonpath
ticket_id: "$.key"
type:
  path: "$.fields.issuetype.name"
  code: lower(str(value))
summary: "$.fields.summary"
note: "$.fields.description"
tags: "$.fields.labels"
parts: "$.fields.components[*].name"
lead: "$.fields.assignee.displayName"
authors: "$.fields.reporter.displayName"
links: "$.self"
`

// githubDefinition reads a GitHub issues list (the payload is the array).
const githubDefinition = `_language: jsonpath
ticket_id:
  path: "$.number"
  code: str(value)
summary: "$.title"
note: "$.body"
tags: "$.labels[*].name"
lead: "$.assignee.login"
authors: "$.user.login"
links: "$.html_url"
`
