package prompt

import "strings"

// Rule is one entry in the compliance screening catalog. The catalog is not a
// detector: keyword hits only steer the model's attention, findings still come
// from the model.
type Rule struct {
	ID        string
	Title     string
	Category  string
	Severity  int // 1-5
	Keywords  []string
	Reference string
}

// Catalog covers MAS 626 AML/CFT obligations and PDPA data-protection rules.
var Catalog = []Rule{
	{
		ID:        "mas_626_cdd_001",
		Title:     "Customer Due Diligence (CDD) Requirements",
		Category:  "AML/CFT",
		Severity:  5,
		Keywords:  []string{"customer identification", "identity verification", "beneficial owner", "cdd", "due diligence"},
		Reference: "MAS 626 Section 4.1",
	},
	{
		ID:        "mas_626_edd_001",
		Title:     "Enhanced Due Diligence for High-Risk Customers",
		Category:  "AML/CFT",
		Severity:  5,
		Keywords:  []string{"enhanced due diligence", "pep", "politically exposed person", "high risk", "edd"},
		Reference: "MAS 626 Section 4.2",
	},
	{
		ID:        "mas_626_suspicious_001",
		Title:     "Suspicious Transaction Reporting",
		Category:  "AML/CFT",
		Severity:  5,
		Keywords:  []string{"suspicious transaction", "str", "suspicious activity", "stro"},
		Reference: "MAS 626 Section 5.1",
	},
	{
		ID:        "mas_626_record_001",
		Title:     "Record Keeping Requirements",
		Category:  "AML/CFT",
		Severity:  4,
		Keywords:  []string{"record keeping", "customer records", "transaction records", "retention"},
		Reference: "MAS 626 Section 6.1",
	},
	{
		ID:        "mas_626_risk_001",
		Title:     "Risk Assessment and Management",
		Category:  "AML/CFT",
		Severity:  4,
		Keywords:  []string{"risk assessment", "risk management", "risk-based", "controls"},
		Reference: "MAS 626 Section 3.1",
	},
	{
		ID:        "pdpa_consent_001",
		Title:     "Consent Management",
		Category:  "PDPA",
		Severity:  4,
		Keywords:  []string{"consent", "personal data", "collection", "withdrawal"},
		Reference: "PDPA Section 15",
	},
	{
		ID:        "pdpa_purpose_001",
		Title:     "Purpose Limitation",
		Category:  "PDPA",
		Severity:  4,
		Keywords:  []string{"purpose limitation", "data use", "secondary use"},
		Reference: "PDPA Section 18",
	},
	{
		ID:        "pdpa_transfer_001",
		Title:     "Cross-Border Data Transfer",
		Category:  "PDPA",
		Severity:  5,
		Keywords:  []string{"cross-border", "data transfer", "overseas", "offshore"},
		Reference: "PDPA Section 26",
	},
	{
		ID:        "sanctions_screening_001",
		Title:     "Sanctions Screening",
		Category:  "Sanctions",
		Severity:  5,
		Keywords:  []string{"sanctions", "embargo", "ofac", "designated person", "restricted party"},
		Reference: "MAS 626 Section 7",
	},
}

// MatchRules returns the catalog entries whose keywords appear in the text.
// Matching is case-insensitive whole-word for short keywords to avoid noise
// like "str" inside other words.
func MatchRules(text string) []Rule {
	lower := strings.ToLower(text)
	words := fieldSet(lower)

	var matched []Rule
	for _, r := range Catalog {
		for _, kw := range r.Keywords {
			if len(kw) <= 4 {
				if words[kw] {
					matched = append(matched, r)
					break
				}
				continue
			}
			if strings.Contains(lower, kw) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

func fieldSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		set[w] = true
	}
	return set
}
