package mcpserver

import "strings"

// TagFormat describes where tags are read from, for LLM consumers of the
// list_tags tool. ext is the configured note extension.
func TagFormat(ext string) string {
	return strings.ReplaceAll(tagFormat, "{ext}", ext)
}

const tagFormat = `# Tag Format

Tags are collected from every ` + "`" + `{ext}` + "`" + ` note under the vault root.

## Front matter

The first block delimited by ` + "`" + `---` + "`" + ` lines is read as YAML. Only the
` + "`" + `tags` + "`" + ` key is used, and it must be a list:

` + "```" + `markdown
---
title: Weekly standup
tags:
  - meeting-notes
  - project-x
---
` + "```" + `

- Each entry is trimmed; empty entries and non-string entries are skipped.
- A ` + "`" + `tags` + "`" + ` value that is not a list (` + "`" + `tags: foo` + "`" + `) makes the whole note
  contribute no tags.
- A block with no closing ` + "`" + `---` + "`" + ` is still read up to the end of the file.

## Inline tags

With ` + "`" + `inline` + "`" + ` enabled, body text is searched for ` + "`" + `#` + "`" + ` tokens that follow
whitespace, e.g. ` + "`" + `See #project-x/roadmap for details` + "`" + `.

- Nested tags use ` + "`" + `/` + "`" + `: ` + "`" + `#area/sub/leaf` + "`" + `.
- A token ends at whitespace, ` + "`" + `#` + "`" + `, ` + "`" + `|` + "`" + `, brackets, parentheses or quotes.
- A ` + "`" + `#` + "`" + ` at the very start of a line (a Markdown heading) is not a tag.

## Output

Every tag is listed once, with leading ` + "`" + `#` + "`" + ` characters removed, so
` + "`" + `project` + "`" + ` in front matter and ` + "`" + `#project` + "`" + ` inline are the same tag.
`
