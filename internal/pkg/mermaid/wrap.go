package mermaid

import (
	"strings"
	"unicode/utf8"
)

const DefaultWrapWidth = 40

// WrapText greedily packs whitespace-separated words into lines of at most
// width runes. Words are never split, so a word longer than width gets a
// line of its own.
func WrapText(text string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	lines := make([]string, 0, 1)
	var line strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+wordLen > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += wordLen
	}
	lines = append(lines, line.String())
	return strings.Join(lines, "\n")
}
