package ticket

import (
	"strings"
	"unicode/utf8"
)

// Lines splits raw OCR text into trimmed candidate lines, preserving order.
// Pieces of one character or less are dropped.
func Lines(text string) []string {
	var lines []string
	for _, piece := range strings.Split(text, "\n") {
		piece = strings.TrimSpace(piece)
		if utf8.RuneCountInString(piece) <= 1 {
			continue
		}
		lines = append(lines, piece)
	}
	return lines
}
