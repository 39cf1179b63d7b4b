package extract

import "regexp"

// Cue tables for the layered extractors. These are data, not logic: tuning
// extraction for a new court's drafting style means editing a table here.

// How far into the document party separators are searched.
const partyScanWindow = 5

// Caps keep noisy documents from flooding a record with weak matches.
const (
	maxIssues     = 10
	maxPrinciples = 10
	maxPrecedents = 15
)

var (
	// "A v B", "A vs. B", "A versus B"
	partySeparator = regexp.MustCompile(`(?i)\s+(?:vs?\.?|versus)\s+`)

	// Trailing citation or case-number noise on a party line
	partyTrailing = regexp.MustCompile(`\s*(?:\[|\(|;|\.\s|$).*$`)

	// "X and Others", "X & 2 others"
	otherPartiesTail = regexp.MustCompile(`(?i)\s+(?:and|&)\s+((?:\d+\s+)?others?|another)\b`)

	// "Respondent: John Doe" style role labels
	rolePartyLabel = regexp.MustCompile(`(?i)\b(?:applicant|petitioner|claimant|respondent|defendant|accused)s?\s*:\s*([^,\n]+)`)

	// Paragraphs that introduce legal issues
	issueCue = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:(?:the\s+)?(?:sole\s+|main\s+)?issues?(?:\s+for\s+determination)?\b|questions?\s+for\s+determination\b|whether(?:\s+or\s+not)?\b)`)

	// Numbered list entries under an issues heading
	numberedWhether = regexp.MustCompile(`(?i)^\([a-z0-9]+\)\s.*\bwhether\b|^\d+[.)]\s.*\bwhether\b`)

	// Paragraphs that open the court's disposition
	decisionCue = regexp.MustCompile(`(?i)^(?:held\b|it is (?:hereby\s+)?ordered\b|judgment is (?:hereby\s+)?entered\b|in conclusion\b|accordingly\b|orders?\b|disposition\b|we therefore hold\b|the upshot\b|final orders?\b)`)

	// Sentences stating settled law
	principleCues = []string{
		"the court held that",
		"it is a settled principle",
		"it is trite law",
		"it is established that",
		"the principle is",
		"the law provides that",
		"ratio decidendi",
	}

	// Citation-shaped substrings: party-v-party plus a year/report token, and
	// bare reporter citations
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[A-Z][A-Za-z.'&\- ]{2,60}?\s+v\.?\s+[A-Z][A-Za-z.'&\- ]{2,60}?\s*\[\d{4}\]\s*(?:eKLR|KLR|[A-Z]{2,6}\s+\d+(?:\s+\(KLR\))?)`),
		regexp.MustCompile(`\[\d{4}\]\s+(?:eKLR|KLR|[A-Z]{2,6}\s+\d+(?:\s+\(KLR\))?)`),
		regexp.MustCompile(`\(\d{4}\)\s+(?:KLR|EA)\s+\d+`),
	}

	// Preamble role labels
	judgesLabel  = regexp.MustCompile(`(?i)^(?:before|coram|presided (?:over )?by|delivered by)\s*[:\-]\s*(.+)$`)
	counselLabel = regexp.MustCompile(`(?i)^(?:counsel|advocates?|appearing)\s*[:\-]\s*(.+)$`)
	forPartyRole = regexp.MustCompile(`(?i)\bfor the (?:plaintiffs?|defendants?|appellants?|respondents?|petitioners?|applicants?|claimants?|accused|state)\s*[:\-]\s*([^,;\n]+)`)

	sentenceSplit = regexp.MustCompile(`[^.?!]+[.?!]?`)
	nameSeparator = regexp.MustCompile(`\s*(?:,|;|&|\band\b)\s*`)
)

// dedupPreserve removes duplicates keeping first-appearance order, capped at
// limit entries. A limit of 0 means no cap.
func dedupPreserve(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
