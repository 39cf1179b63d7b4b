package extract

import "strings"

// The preamble ends at the first paragraph long enough to be substantive
// judgment prose, or after this many paragraphs, whichever comes first.
const (
	preambleMaxParagraphs = 15
	substantiveWordCount  = 60
)

// preambleOf slices off the document head: the caption, coram, and
// appearance lines that precede the judgment body.
func preambleOf(paragraphs []string) []string {
	end := len(paragraphs)
	if end > preambleMaxParagraphs {
		end = preambleMaxParagraphs
	}
	for i := 0; i < end; i++ {
		if WordCount(paragraphs[i]) > substantiveWordCount {
			return paragraphs[:i]
		}
	}
	return paragraphs[:end]
}

// ExtractJudges reads the bench from preamble role labels ("Before:",
// "Coram:", "Delivered by ...").
func ExtractJudges(paragraphs []string) []string {
	var judges []string
	for _, para := range preambleOf(paragraphs) {
		for _, line := range strings.Split(para, "\n") {
			m := judgesLabel.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			judges = append(judges, splitNames(m[1])...)
		}
	}
	return dedupPreserve(judges, 0)
}

// ExtractAdvocates reads counsel appearances from preamble role labels
// ("Counsel:", "For the appellant: ...").
func ExtractAdvocates(paragraphs []string) []string {
	var advocates []string
	for _, para := range preambleOf(paragraphs) {
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if m := counselLabel.FindStringSubmatch(line); m != nil {
				advocates = append(advocates, splitNames(m[1])...)
				continue
			}
			for _, m := range forPartyRole.FindAllStringSubmatch(line, -1) {
				name := strings.TrimSpace(m[1])
				if name != "" {
					advocates = append(advocates, name)
				}
			}
		}
	}
	return dedupPreserve(advocates, 0)
}

func splitNames(value string) []string {
	var names []string
	for _, part := range nameSeparator.Split(value, -1) {
		part = strings.Trim(part, " \t.–-")
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
