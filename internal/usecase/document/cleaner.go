package document

import (
	"regexp"
	"strings"
)

var (
	inlineSpaceRegex = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex  = regexp.MustCompile(`\n{3,}`)
)

// cleanText normalizes raw document text before splitting: line endings
// become \n, runs of spaces and tabs collapse to one space, lines lose
// trailing whitespace, and runs of blank lines collapse to a single one.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = inlineSpaceRegex.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	text = strings.Join(lines, "\n")

	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
