package listing

import (
	"encoding/xml"
	"fmt"
	"strings"

	"lawscraper/pkg/utils"
)

// FeedEntry is one item from the site's Atom feed.
type FeedEntry struct {
	Title      string
	URL        string
	Updated    string // ISO 8601 date when parseable
	Categories []string
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	Links      []atomLink     `xml:"link"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
	Categories []atomCategory `xml:"category"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// ParseFeed decodes an Atom feed document into entries. Entries without a
// link are skipped.
func ParseFeed(data []byte) ([]FeedEntry, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("%w: XML feed: %v", utils.ErrParsing, err)
	}

	entries := make([]FeedEntry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		href := ""
		for _, link := range e.Links {
			if link.Href == "" {
				continue
			}
			// Prefer the alternate link; fall back to any link
			if href == "" || link.Rel == "alternate" {
				href = link.Href
			}
		}
		if href == "" {
			continue
		}

		updated := e.Updated
		if updated == "" {
			updated = e.Published
		}

		terms := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			if c.Term != "" {
				terms = append(terms, c.Term)
			}
		}

		entries = append(entries, FeedEntry{
			Title:      strings.TrimSpace(e.Title),
			URL:        href,
			Updated:    NormalizeDate(updated),
			Categories: terms,
		})
	}
	return entries, nil
}

// IsJudgment reports whether the entry looks like a judgment, either by feed
// category or by link shape.
func (e FeedEntry) IsJudgment() bool {
	for _, term := range e.Categories {
		lower := strings.ToLower(term)
		if strings.Contains(lower, "judgment") || strings.Contains(lower, "case law") || strings.Contains(lower, "case-law") {
			return true
		}
	}
	lowerURL := strings.ToLower(e.URL)
	for _, marker := range []string{"/judgments/", "/judgment/", "/akn/"} {
		if strings.Contains(lowerURL, marker) {
			return true
		}
	}
	return false
}
