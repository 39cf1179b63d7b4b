package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	c := New(nil)

	tests := []struct {
		title string
		want  string
	}{
		{"Penal Code", "Criminal"},
		{"The Police Service Act", "Criminal"},
		{"Law of Contract Act", "Civil"},
		{"Constitution of Kenya", "Constitutional"},
		{"Banking Act", "Commercial"},
		{"Employment Act", "Labor"},
		{"Environmental Management and Co-ordination Act", "Environmental"},
		{"Public Health Act", "Health"},
		{"Basic Education Act", "Education"},
		{"Income Tax Act", "Tax"},
		{"Widget Registration Act", Uncategorized},
		{"", Uncategorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Categorize(tt.title), "title %q", tt.title)
	}
}

func TestCategorizeIsCaseInsensitive(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "Criminal", c.Categorize("PENAL CODE"))
}

func TestCategorizeFirstRuleWins(t *testing.T) {
	// "criminal" (rule 1) outranks "property" (rule 2) by order
	c := New(nil)
	assert.Equal(t, "Criminal", c.Categorize("Criminal Property Forfeiture Act"))
}

func TestCategorizeCustomRules(t *testing.T) {
	c := New([]Rule{{Category: "Maritime", Keywords: []string{"shipping"}}})
	assert.Equal(t, "Maritime", c.Categorize("Merchant Shipping Act"))
	assert.Equal(t, Uncategorized, c.Categorize("Penal Code"))
}
