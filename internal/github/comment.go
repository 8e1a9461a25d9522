package github

import (
	"fmt"
	"strings"
)

// FormatComment renders the markdown body for a pull-request comment,
// embedding the wrapped command line and its captured output verbatim.
func FormatComment(project, command string, output []byte) string {
	var b strings.Builder
	if project != "" {
		fmt.Fprintf(&b, "#### :package: %s\n", project)
	}
	fmt.Fprintf(&b, "Ran `%s`\n\n", command)
	b.WriteString("```\n")
	text := strings.TrimRight(string(output), "\n")
	if text == "" {
		text = "(no output)"
	}
	b.WriteString(text)
	b.WriteString("\n```\n")
	return b.String()
}
