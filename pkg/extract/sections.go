package extract

import "strings"

// ExtractIssues collects the legal issues paragraphs in text order: issue
// heading cues, bare "Whether ..." paragraphs, and numbered list entries
// containing "whether".
func ExtractIssues(paragraphs []string) []string {
	var issues []string
	for _, para := range paragraphs {
		firstLine := para
		if idx := strings.IndexByte(para, '\n'); idx >= 0 {
			firstLine = para[:idx]
		}

		if issueCue.MatchString(firstLine) || numberedWhether.MatchString(firstLine) {
			issues = append(issues, strings.TrimSpace(firstLine))
			// A heading paragraph may carry the issues as following lines
			for _, line := range strings.Split(para, "\n")[1:] {
				line = strings.TrimSpace(line)
				if line != "" && (issueCue.MatchString(line) || numberedWhether.MatchString(line)) {
					issues = append(issues, line)
				}
			}
		}
	}
	return dedupPreserve(issues, maxIssues)
}

// ExtractDecision returns the disposition: all paragraphs opening with a
// decision cue, concatenated in order. When no cue matches the last
// non-empty paragraph is returned; judgments conventionally end with the
// order, so the fallback is deliberate policy.
func ExtractDecision(paragraphs []string) string {
	var matched []string
	for _, para := range paragraphs {
		if decisionCue.MatchString(para) {
			matched = append(matched, para)
		}
	}
	if len(matched) > 0 {
		return strings.TrimSpace(strings.Join(matched, "\n\n"))
	}

	if len(paragraphs) > 0 {
		return paragraphs[len(paragraphs)-1]
	}
	return ""
}

// ExtractPrinciples collects sentences containing settled-law cue phrases,
// deduplicated in first-appearance order.
func ExtractPrinciples(paragraphs []string) []string {
	var principles []string
	for _, para := range paragraphs {
		for _, sentence := range sentenceSplit.FindAllString(para, -1) {
			lower := strings.ToLower(sentence)
			for _, cue := range principleCues {
				if strings.Contains(lower, cue) {
					principles = append(principles, strings.TrimSpace(sentence))
					break
				}
			}
		}
	}
	return dedupPreserve(principles, maxPrinciples)
}

// ExtractPrecedents collects citation-shaped substrings, deduplicated in
// first-appearance order.
func ExtractPrecedents(text string) []string {
	type match struct {
		pos  int
		text string
	}
	var matches []match
	for _, pattern := range citationPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, match{pos: loc[0], text: strings.TrimSpace(text[loc[0]:loc[1]])})
		}
	}

	// First-appearance order across all patterns
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].pos < matches[j-1].pos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	cited := make([]string, 0, len(matches))
	for _, m := range matches {
		cited = append(cited, m.text)
	}
	return dedupPreserve(cited, maxPrecedents)
}

// ExtractSummary returns the first paragraph following a summary cue, or the
// second paragraph of the document truncated to 500 characters when no cue
// matches.
func ExtractSummary(paragraphs []string) string {
	cues := []string{"summary", "synopsis", "overview", "brief facts", "background", "the facts of the case", "facts of the matter"}
	for i, para := range paragraphs {
		lower := strings.ToLower(para)
		for _, cue := range cues {
			if !strings.HasPrefix(lower, cue) {
				continue
			}
			rest := strings.TrimSpace(strings.TrimLeft(para[len(cue):], " \t:–-"))
			if rest != "" {
				return truncate(rest, 500)
			}
			if i+1 < len(paragraphs) {
				return truncate(paragraphs[i+1], 500)
			}
		}
	}

	if len(paragraphs) > 1 {
		return truncate(paragraphs[1], 500)
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
