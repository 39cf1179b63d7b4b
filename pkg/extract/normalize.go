package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	pageArtifactLine = regexp.MustCompile(`(?i)^\s*(?:page\s+\d+|\d+\s+of\s+\d+)\s*$`)
	horizontalRuns   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankLineRuns    = regexp.MustCompile(`\n{3,}`)
	paragraphBreak   = regexp.MustCompile(`\n\s*\n`)
)

// Normalize canonicalizes judgment text for extraction: NFKC form, page
// header/footer artifacts dropped, horizontal whitespace collapsed. Blank
// lines are preserved (collapsed to one) because paragraph boundaries carry
// meaning for every later extraction layer.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if pageArtifactLine.MatchString(line) {
			continue
		}
		cleaned = append(cleaned, strings.TrimSpace(horizontalRuns.ReplaceAllString(line, " ")))
	}

	text = strings.Join(cleaned, "\n")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Paragraphs splits normalized text into non-empty paragraphs on blank-line
// boundaries.
func Paragraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
