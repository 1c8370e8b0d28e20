package reports

// MaxQuoteChars is the hard cap on an evidence quote after normalization.
const MaxQuoteChars = 600

// Evidence is a page-anchored quotation substantiating a flag.
type Evidence struct {
	Page  int    `json:"page"`
	Quote string `json:"quote"`
}

// Flag is one detected compliance issue.
type Flag struct {
	Title          string     `json:"title"`
	Severity       int        `json:"severity"` // 1..5
	WhyItMatters   string     `json:"why_it_matters"`
	Recommendation string     `json:"recommendation"`
	Evidence       []Evidence `json:"evidence"`
}

// Aggregate root: one analysis result per uploaded document.
// Immutable after creation; the store assigns ID.
type Report struct {
	ID          int64   `json:"id,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	DocName     string  `json:"doc_name"`
	PageCount   int     `json:"page_count,omitempty"`
	Summary     string  `json:"summary"`
	OverallRisk float64 `json:"overall_risk"` // 0..100
	Flags       []Flag  `json:"flags"`
	TS          int64   `json:"ts,omitempty"` // epoch millis
}

// MeanSeverityRisk derives an overall risk score from flag severities:
// mean(severity)/5*100, 0 when there are no flags.
func MeanSeverityRisk(flags []Flag) float64 {
	if len(flags) == 0 {
		return 0
	}
	sum := 0
	for _, f := range flags {
		sum += f.Severity
	}
	return float64(sum) / float64(len(flags)) / 5.0 * 100.0
}
