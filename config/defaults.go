package config

// DefaultSchema is the built-in configuration schema. Defaults may carry
// {name} attribute placeholders, filled in at loader construction; the
// tags.definitions node accepts arbitrary user-chosen entry names.
const DefaultSchema = `properties:
  origin:
    docs: Where raw release items come from.
    properties:
      type:
        type: string
        default: jira
        docs: Mapping definition used to read raw items.
      project:
        type: string
        docs: Tracker project key.
      url:
        type: string
        docs: Tracker base URL, used when building change links.
      query:
        type: string
        docs: Tracker query selecting the release's items.
  release:
    docs: Metadata attached to the generated release.
    properties:
      code:
        type: string
        default: "{release}"
        docs: Release code, normally injected via attributes.
      date:
        type: string
        default: "{date}"
        docs: Release date, normally injected via attributes.
      commit:
        type: string
        default: "{commit}"
        docs: Commit hash the release was cut from.
      memo:
        type: string
        templating:
          default_engine: mustache
          delayed: true
        docs: Free-form release memo, rendered per draft.
      id_template:
        type: string
        default: "{{ticket_id}}"
        templating:
          default_engine: mustache
          delayed: true
        docs: Template producing each change's identifier.
  mapping:
    docs: How raw items map onto changes.
    properties:
      language:
        type: string
        default: jsonpath
        docs: Default query language for mapping paths.
      engine:
        type: string
        default: mustache
        docs: Default template engine for mapping transforms.
      dir:
        type: string
        docs: Directory of mapping definitions overriding the built-ins.
  notes:
    docs: Note extraction and empty-note policy.
    properties:
      pattern:
        type: string
        docs: Capture pattern applied to the note body; a group named
          "note" is preferred, else the first group, else the whole match.
      headline_pattern:
        type: string
        docs: Pattern extracting a headline from the note body.
      section:
        type: string
        docs: Heading whose body is used when the note is a rich document.
      empty_note:
        type: string
        default: skip
        docs: Policy for changes without a note, skip or substitute.
      placeholder:
        type: string
        default: Release note to follow.
        docs: Substitute text used by the substitute policy.
      tense:
        type: string
        docs: Verb tense applied to summaries and headlines, present or past.
  tags:
    docs: Tag classification and inclusion rules.
    properties:
      include:
        type: array
        docs: Canonical tags whose changes are always kept.
      exclude:
        type: array
        docs: Canonical tags whose changes are dropped outright.
      required:
        type: array
        docs: Raw slugs marking changes that must carry a note.
      definitions:
        docs: Named classification entries mapping tracker labels to tags.
        properties:
          <name>:
            properties:
              slug:
                type: string
                docs: Tracker label; defaults to the lowercased entry name.
              name:
                type: string
                docs: Display name; defaults to the entry name.
              drop:
                type: bool
                default: false
                docs: Hide from display while still driving decisions.
`
