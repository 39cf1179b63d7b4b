package utils

import (
	"regexp"
	"strings"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	whitespaceRuns      = regexp.MustCompile(`\s+`)
)

// CollapseWhitespace trims the string and collapses internal whitespace runs
// (including newlines from pretty-printed HTML) to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// SanitizeFilename converts an arbitrary string (URL, case title, domain) into
// a safe filename component. Unsafe runs collapse to a single underscore and
// leading/trailing separators are trimmed.
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return "unnamed"
	}
	if len(sanitized) > 120 {
		sanitized = sanitized[:120]
	}
	return sanitized
}
