package email

import (
	"html"
	"regexp"
	"strings"
)

var (
	blockTagPattern  = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/h[1-6]|/li|/tr)\s*/?>`)
	dropBlockPattern = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	tagPattern       = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern     = regexp.MustCompile(`[ \t]+`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// PlainText derives a plain-text body from HTML by stripping tags.
// Block-level closers become line breaks so paragraphs survive.
func PlainText(body string) string {
	out := dropBlockPattern.ReplaceAllString(body, "")
	out = blockTagPattern.ReplaceAllString(out, "\n")
	out = tagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, "\r\n", "\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}
	out = strings.Join(lines, "\n")
	out = blankLinePattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
