package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lawscraper/pkg/models"
)

var titleCaser = cases.Title(language.English)

// ExtractParties finds the litigants from a separator pattern near the
// document start. If no separator appears within the scan window the parties
// stay empty; nothing is guessed.
func ExtractParties(paragraphs []string) models.Parties {
	parties := models.Parties{OtherParties: []string{}}

	window := paragraphs
	if len(window) > partyScanWindow {
		window = window[:partyScanWindow]
	}

	for _, para := range window {
		loc := partySeparator.FindStringIndex(para)
		if loc == nil {
			continue
		}

		left := strings.TrimSpace(para[:loc[0]])
		right := strings.TrimSpace(para[loc[1]:])

		parties.Plaintiff = cleanPartyName(lastClause(left))
		defendant := cleanPartyName(firstClause(right))

		// "Republic and 2 others" puts the tail in other_parties
		if m := otherPartiesTail.FindStringSubmatchIndex(defendant); m != nil {
			tail := strings.TrimSpace(defendant[m[2]:m[3]])
			defendant = strings.TrimSpace(defendant[:m[0]])
			parties.OtherParties = append(parties.OtherParties, titleCaser.String(tail))
		}
		parties.Defendant = defendant
		break
	}

	// Role-labeled parties elsewhere in the text
	for _, para := range paragraphs {
		for _, m := range rolePartyLabel.FindAllStringSubmatch(para, -1) {
			name := cleanPartyName(m[1])
			if name == "" || name == parties.Plaintiff || name == parties.Defendant {
				continue
			}
			parties.OtherParties = append(parties.OtherParties, name)
		}
	}
	parties.OtherParties = dedupPreserve(parties.OtherParties, 0)

	return parties
}

// firstClause cuts a party string at the first trailing-noise boundary:
// citation bracket, parenthesis, semicolon, or sentence end.
func firstClause(s string) string {
	if loc := partyTrailing.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// lastClause takes the name immediately left of the separator, dropping any
// leading heading or case-number text ending in punctuation.
func lastClause(s string) string {
	for _, sep := range []string{"\n", ":", ";", ".", ")"} {
		if idx := strings.LastIndex(s, sep); idx >= 0 {
			s = s[idx+1:]
		}
	}
	return strings.TrimSpace(s)
}

func cleanPartyName(name string) string {
	name = strings.Trim(name, " \t-–—.,:;")
	// ALL-CAPS captions read better titled
	if name != "" && name == strings.ToUpper(name) && len(name) > 3 {
		name = titleCaser.String(strings.ToLower(name))
	}
	return name
}
