package note

import "strings"

// inlineEscaper neutralizes Markdown-significant characters in user-authored
// single-line fields such as titles and author names.
var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
	`|`, `\|`,
	`<`, `&lt;`,
	`>`, `&gt;`,
	"\n", " ",
	"\r", " ",
)

// EscapeInline escapes Markdown-significant characters in a single-line field.
func EscapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

// blockEscaper neutralizes sequences in multi-line bodies that would break
// the note structure: HTML comments could fake the managed-region markers,
// and a bare "---" line opens a new frontmatter block in some vault tools.
var blockEscaper = strings.NewReplacer(
	"<!--", "&lt;!--",
	"-->", "--&gt;",
)

// EscapeBlock sanitizes a multi-line user-authored body for embedding in the
// managed region. The body keeps its own Markdown formatting; only sequences
// that could escape the managed region are neutralized.
func EscapeBlock(s string) string {
	s = blockEscaper.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			lines[i] = `\---`
		}
	}
	return strings.Join(lines, "\n")
}
