package ui

import (
	"strings"
	"unicode/utf8"
)

const (
	errorPrefix    = "Error: "
	maxErrorLines  = 2
	minErrorWidth  = 10
	truncationMark = "..."
)

// formatError word-wraps an error to at most maxErrorLines lines of width,
// marking the last line with "..." when words were dropped
func formatError(err error, width int) string {
	if err == nil {
		return ""
	}
	words := strings.Fields(err.Error())
	if len(words) == 0 {
		return errorPrefix + "unknown error"
	}
	width = max(width, minErrorWidth)

	// the prefix shares the first line
	limit := max(width-utf8.RuneCountInString(errorPrefix), minErrorWidth)
	var lines []string
	var line strings.Builder
	used := 0
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+n > limit {
			lines = append(lines, line.String())
			line.Reset()
			limit = width
			if len(lines) == maxErrorLines {
				break
			}
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
		used++
	}
	if line.Len() > 0 && len(lines) < maxErrorLines {
		lines = append(lines, line.String())
	}

	if used < len(words) {
		last := []rune(lines[len(lines)-1])
		keep := width - utf8.RuneCountInString(truncationMark)
		if len(last) > keep {
			last = last[:keep]
		}
		lines[len(lines)-1] = string(last) + truncationMark
	}
	return errorPrefix + strings.Join(lines, "\n")
}
