package prompt

import (
	"fmt"
	"strings"
)

// SystemPrompt provides strict directions and the report schema for JSON output.
func SystemPrompt() string {
	return `You are an expert compliance analyst for financial and legal documents. You must produce one valid JSON object only (no markdown, no commentary, no code fences) following this schema strictly:
{
  "summary": "executive summary (2-3 sentences)",
  "overall_risk": number 0-100,
  "flags": [
    {
      "title": "Risk category (e.g., Cross-Border, AML, Sanctions, PDPA/GDPR)",
      "severity": integer 1-5,
      "why_it_matters": "explanation",
      "recommendation": "action to take",
      "evidence": [ { "page": integer >= 1, "quote": "relevant quote (max 600 chars)" } ]
    }
  ]
}
Guidelines: identify red flags across Cross-Border transactions, AML (Anti-Money Laundering), Sanctions, and PDPA/GDPR compliance. Keep quotes under 600 characters. Cite the [Page N] markers in the document for evidence pages. If overall risk is unclear, estimate it as mean(severity)/5*100.`
}

// UserPrompt wraps the extracted document text, appending matched rule
// references as focus areas when the catalog recognizes any.
func UserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze the following document for compliance risks and produce the JSON report.\n\n")
	if matched := MatchRules(text); len(matched) > 0 {
		b.WriteString("Pay particular attention to these areas flagged by keyword screening:\n")
		for _, r := range matched {
			b.WriteString(fmt.Sprintf("- %s (%s, %s)\n", r.Title, r.Category, r.Reference))
		}
		b.WriteString("\n")
	}
	b.WriteString("Document:\n")
	b.WriteString(text)
	return b.String()
}

// StrictSystemPrompt is the repair-attempt instruction after a parse failure.
func StrictSystemPrompt() string {
	return "Return only strict valid JSON per the schema; no markdown, no prose, no code fences."
}

// StrictUserPrompt is the repair-attempt user message.
func StrictUserPrompt(text string) string {
	return "Strict JSON compliance report for this document:\n" + text
}
