package analysis

import (
	"math"
	"strconv"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/domain/reports"
)

const defaultSeverity = 3

// Normalize maps the loosely-typed model output into a well-formed Report.
// Policy is maximal tolerance: missing fields get defaults, severities are
// clamped, quotes are clipped. It fails only when flags exist but none of
// them carries a title, which makes the result meaningless.
func Normalize(obj map[string]any, docName string, pageCount int, userID string, ts int64) (*reports.Report, error) {
	r := &reports.Report{
		UserID:    userID,
		DocName:   docName,
		PageCount: pageCount,
		Summary:   asString(obj["summary"]),
		Flags:     []reports.Flag{},
		TS:        ts,
	}

	rawFlags, _ := obj["flags"].([]any)
	titled := 0
	for _, rf := range rawFlags {
		fm, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		f := reports.Flag{
			Title:          asString(fm["title"]),
			Severity:       clampSeverity(fm["severity"]),
			WhyItMatters:   asString(fm["why_it_matters"]),
			Recommendation: asString(fm["recommendation"]),
			Evidence:       []reports.Evidence{},
		}
		if f.Title != "" {
			titled++
		}
		rawEv, _ := fm["evidence"].([]any)
		for _, re := range rawEv {
			em, ok := re.(map[string]any)
			if !ok {
				continue
			}
			ev := reports.Evidence{
				Page:  asInt(em["page"], 1),
				Quote: clipQuote(asString(em["quote"])),
			}
			if ev.Page < 1 {
				ev.Page = 1
			}
			f.Evidence = append(f.Evidence, ev)
		}
		r.Flags = append(r.Flags, f)
	}

	if len(r.Flags) > 0 && titled == 0 {
		return nil, domain.E(domain.CodeSchemaInvalid, "model output has no usable findings")
	}

	r.OverallRisk = normalizeRisk(obj["overall_risk"], r.Flags)
	return r, nil
}

// normalizeRisk enforces the 0-100 convention. Values in (0,1] are treated as
// fractions and scaled; missing or non-positive values are derived from flag
// severities.
func normalizeRisk(v any, flags []reports.Flag) float64 {
	risk := asFloat(v, 0)
	switch {
	case risk <= 0:
		risk = reports.MeanSeverityRisk(flags)
	case risk <= 1:
		risk *= 100
	case risk > 100:
		risk = 100
	}
	return math.Round(risk*100) / 100
}

func clipQuote(q string) string {
	if len(q) > reports.MaxQuoteChars {
		return q[:reports.MaxQuoteChars]
	}
	return q
}

func clampSeverity(v any) int {
	sev := asInt(v, defaultSeverity)
	if sev < 1 {
		sev = 1
	}
	if sev > 5 {
		sev = 5
	}
	return sev
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return int(f)
		}
	}
	return def
}
