package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ruleIDs(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.ID)
	}
	return out
}

func TestMatchRulesFindsKeywords(t *testing.T) {
	text := "The client engages in cross-border remittances. Enhanced due diligence was not performed for the politically exposed person."
	matched := ruleIDs(MatchRules(text))

	assert.Contains(t, matched, "pdpa_transfer_001")
	assert.Contains(t, matched, "mas_626_edd_001")
}

func TestMatchRulesShortKeywordsNeedWordBoundary(t *testing.T) {
	// "str" appears inside "strategy" but not as a word
	matched := ruleIDs(MatchRules("Our strategy document outlines growth plans."))
	assert.NotContains(t, matched, "mas_626_suspicious_001")

	matched = ruleIDs(MatchRules("An STR was filed with the authorities."))
	assert.Contains(t, matched, "mas_626_suspicious_001")
}

func TestMatchRulesCleanText(t *testing.T) {
	assert.Empty(t, MatchRules("A recipe for banana bread."))
}

func TestUserPromptIncludesFocusAreas(t *testing.T) {
	p := UserPrompt("Payments involve sanctions screening gaps.")
	assert.Contains(t, p, "Sanctions Screening")
	assert.Contains(t, p, "keyword screening")
	assert.Contains(t, p, "Document:")
}

func TestUserPromptWithoutMatches(t *testing.T) {
	p := UserPrompt("A recipe for banana bread.")
	assert.False(t, strings.Contains(p, "keyword screening"))
	assert.Contains(t, p, "Document:")
}
