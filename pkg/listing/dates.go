package listing

import (
	"strings"
	"time"
)

// Layouts seen on the primary site and its mirror, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2 January 2006",
	"2 Jan 2006",
	"02/01/2006",
	"02-01-2006",
}

// NormalizeDate converts a scraped date string to ISO 8601 (YYYY-MM-DD) when
// any known layout matches. Unparseable input is returned trimmed rather than
// discarded, so the raw value is still available downstream.
func NormalizeDate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return cleaned
}
