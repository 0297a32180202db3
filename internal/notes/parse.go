package notes

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// stripTags is a deliberately minimal HTML-to-text reduction: the note
// ingestion pipeline only needs line-oriented text for the ingredient and
// instruction parsers, never a structured DOM, so a full HTML parser is
// more machinery than the task calls for.
func stripTags(html string) string {
	return tagRe.ReplaceAllString(html, "\n")
}

// splitLines extracts non-blank, trimmed lines from raw HTML, used to seed
// both the ingredient and instruction fan-outs.
func splitLines(html string) []string {
	text := stripTags(html)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
