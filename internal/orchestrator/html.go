package orchestrator

import (
	"regexp"
	"strings"
)

var (
	newlinePattern   = regexp.MustCompile(`[\n\r]`)
	breakPattern     = regexp.MustCompile(`(?i)\s*<\s*br\s*/?\s*>\s*`)
	paragraphPattern = regexp.MustCompile(`(?i)<\s*/\s*p\s*>\s*<\s*p[^>]*>`)
	tagPattern       = regexp.MustCompile(`<.*?>`)
)

// StripHTML flattens an upstream reason string: line breaks become spaces,
// <br> and paragraph boundaries become newlines, other tags are dropped.
func StripHTML(s string) string {
	s = newlinePattern.ReplaceAllString(s, " ")
	s = breakPattern.ReplaceAllString(s, "\n")
	s = paragraphPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
