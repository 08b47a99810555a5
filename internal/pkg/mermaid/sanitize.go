package mermaid

import (
	"regexp"
	"strings"
)

var (
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	markupTag    = regexp.MustCompile(`<.*?>`)
)

// unsafeReplacements is applied in order; none of the replacements
// reintroduces a character that appears earlier in the list.
var unsafeReplacements = []struct {
	old string
	new string
}{
	{"{", "("},
	{"}", ")"},
	{"&", "and"},
	{"#", ""},
	{"%", "percent"},
}

// SanitizeText turns <br> variants into newlines and drops every other
// tag-like sequence.
func SanitizeText(text string) string {
	text = lineBreakTag.ReplaceAllString(text, "\n")
	return markupTag.ReplaceAllString(text, "")
}

// EscapeChars replaces characters the mermaid grammar cannot take inside
// labels.
func EscapeChars(text string) string {
	for _, r := range unsafeReplacements {
		text = strings.ReplaceAll(text, r.old, r.new)
	}
	return text
}
