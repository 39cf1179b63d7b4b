package listing

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lawscraper/pkg/utils"
)

// CaseDetails holds the labeled metadata scraped from a judgment's document
// details panel. Absent labels leave their field empty.
type CaseDetails struct {
	Citation     string
	Court        string
	CourtStation string
	CaseNumber   string
	JudgmentDate string // ISO 8601 when the site's date was parseable
	CaseAction   string
	Judges       []string
}

// Detail panel labels as rendered by the site, mapped to setters. Sites vary
// the capitalization, so matching is case-insensitive on the whole label.
var detailLabels = []struct {
	label string
	set   func(*CaseDetails, string)
}{
	{"citation", func(d *CaseDetails, v string) { d.Citation = v }},
	{"court station", func(d *CaseDetails, v string) { d.CourtStation = v }},
	{"court", func(d *CaseDetails, v string) { d.Court = v }},
	{"case number", func(d *CaseDetails, v string) { d.CaseNumber = v }},
	{"case action", func(d *CaseDetails, v string) { d.CaseAction = v }},
	{"judgment date", func(d *CaseDetails, v string) { d.JudgmentDate = NormalizeDate(v) }},
	{"judges", func(d *CaseDetails, v string) { d.Judges = SplitJudges(v) }},
}

// ExtractCaseDetails scrapes the label/value pairs from a judgment page. It
// handles the three shapes the site uses: dt/dd definition lists, sibling
// label/value cells, and inline "Label: value" text.
func ExtractCaseDetails(pageHTML []byte) (CaseDetails, error) {
	var details CaseDetails

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return details, fmt.Errorf("%w: HTML document page: %v", utils.ErrParsing, err)
	}

	found := make(map[string]bool)

	doc.Find("dt, th, td, div, span, b, strong, label").Each(func(_ int, sel *goquery.Selection) {
		text := utils.CollapseWhitespace(sel.Text())
		// Labels are short; long text is content, not a label
		if text == "" || len(text) > 50 {
			return
		}

		for _, entry := range detailLabels {
			if found[entry.label] {
				continue
			}

			lower := strings.ToLower(text)
			var value string
			switch {
			case lower == entry.label || lower == entry.label+":":
				value = siblingValue(sel)
			case strings.HasPrefix(lower, entry.label+":"):
				value = strings.TrimSpace(text[len(entry.label)+1:])
			default:
				continue
			}

			value = cleanDetailValue(value)
			if value != "" {
				entry.set(&details, value)
				found[entry.label] = true
			}
			break
		}
	})

	return details, nil
}

func siblingValue(sel *goquery.Selection) string {
	if v := utils.CollapseWhitespace(sel.Next().Text()); v != "" {
		return v
	}
	// Label wrapped one level deeper than its value
	return utils.CollapseWhitespace(sel.Parent().Next().Text())
}

// The site appends a "Copy" button label to copyable values.
func cleanDetailValue(value string) string {
	value = strings.TrimSuffix(value, "Copy")
	return strings.TrimSpace(value)
}

var judgeSeparators = regexp.MustCompile(`\s*(?:,|;|&|\band\b)\s*`)

// SplitJudges splits a scraped judges value into individual names. Trailing
// rank abbreviations (J, JA, JJ) stay attached to their name.
func SplitJudges(value string) []string {
	var judges []string
	for _, part := range judgeSeparators.Split(value, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			judges = append(judges, part)
		}
	}
	return judges
}
