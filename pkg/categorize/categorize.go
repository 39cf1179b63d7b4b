package categorize

import "strings"

// Uncategorized is assigned when no rule matches. Records always carry a
// category; an unknown act degrades to this value, never to empty.
const Uncategorized = "Uncategorized"

// Rule maps a keyword set to a legal category.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules is the ordered classification table. First rule with a
// keyword appearing in the title wins, so rule order is part of the
// contract: reordering changes results for titles matching several rules.
var DefaultRules = []Rule{
	{"Criminal", []string{"criminal", "penal", "offence", "prosecution", "police"}},
	{"Civil", []string{"civil", "contract", "tort", "property", "family"}},
	{"Constitutional", []string{"constitution", "bill of rights", "fundamental", "democracy"}},
	{"Commercial", []string{"commercial", "business", "trade", "company", "banking"}},
	{"Labor", []string{"labor", "employment", "work", "occupation", "trade union"}},
	{"Environmental", []string{"environment", "conservation", "pollution", "natural resources"}},
	{"Health", []string{"health", "medical", "pharmacy", "disease", "hospital"}},
	{"Education", []string{"education", "school", "university", "college", "training"}},
	{"Tax", []string{"tax", "revenue", "customs", "excise", "income tax"}},
}

// Categorizer assigns a legal category to act titles by keyword matching.
type Categorizer struct {
	rules []Rule
}

// New returns a Categorizer with the given rules; nil means DefaultRules.
func New(rules []Rule) *Categorizer {
	if rules == nil {
		rules = DefaultRules
	}
	return &Categorizer{rules: rules}
}

// Categorize returns the category of the first rule whose keyword appears
// (case-insensitive substring) in the title, or Uncategorized.
func (c *Categorizer) Categorize(actTitle string) string {
	lower := strings.ToLower(actTitle)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return Uncategorized
}
