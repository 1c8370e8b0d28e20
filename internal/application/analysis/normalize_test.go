package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
)

func flagWithQuote(quote string) map[string]any {
	return map[string]any{
		"title":          "Cross-Border Transactions",
		"severity":       float64(4),
		"why_it_matters": "May trigger additional KYC/AML checks.",
		"recommendation": "Implement enhanced due diligence.",
		"evidence": []any{
			map[string]any{"page": float64(2), "quote": quote},
		},
	}
}

func TestNormalizeClipsLongQuotes(t *testing.T) {
	long := strings.Repeat("a", 900)
	obj := map[string]any{
		"summary": "s",
		"flags":   []any{flagWithQuote(long)},
	}

	r, err := Normalize(obj, "doc.pdf", 3, "u", 1)
	require.NoError(t, err)
	require.Len(t, r.Flags, 1)
	require.Len(t, r.Flags[0].Evidence, 1)
	assert.Len(t, r.Flags[0].Evidence[0].Quote, 600)
}

func TestNormalizeKeepsShortQuotes(t *testing.T) {
	obj := map[string]any{
		"summary": "s",
		"flags":   []any{flagWithQuote("short quote")},
	}

	r, err := Normalize(obj, "doc.pdf", 3, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, "short quote", r.Flags[0].Evidence[0].Quote)
}

func TestNormalizeDerivesRiskFromSeverities(t *testing.T) {
	var flags []any
	for _, sev := range []float64{4, 2, 3} {
		f := flagWithQuote("q")
		f["severity"] = sev
		flags = append(flags, f)
	}
	obj := map[string]any{"summary": "s", "flags": flags}

	r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, 60.0, r.OverallRisk)
}

func TestNormalizeEmptyFlagsZeroRisk(t *testing.T) {
	r, err := Normalize(map[string]any{"summary": "clean"}, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.OverallRisk)
	assert.NotNil(t, r.Flags)
	assert.Empty(t, r.Flags)
}

func TestNormalizeScalesFractionalRisk(t *testing.T) {
	obj := map[string]any{
		"summary":      "s",
		"overall_risk": 0.6,
		"flags":        []any{flagWithQuote("q")},
	}

	r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, 60.0, r.OverallRisk)
}

func TestNormalizeClampsRiskAbove100(t *testing.T) {
	obj := map[string]any{
		"summary":      "s",
		"overall_risk": float64(250),
		"flags":        []any{flagWithQuote("q")},
	}

	r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, r.OverallRisk)
}

func TestNormalizeClampsSeverity(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{float64(9), 5},
		{float64(0), 1},
		{float64(-2), 1},
		{nil, 3},
		{"4", 4},
	}
	for _, tc := range cases {
		f := flagWithQuote("q")
		f["severity"] = tc.in
		obj := map[string]any{"summary": "s", "flags": []any{f}}

		r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, r.Flags[0].Severity, "severity %v", tc.in)
	}
}

func TestNormalizeCoercesMissingFields(t *testing.T) {
	obj := map[string]any{
		"flags": []any{
			map[string]any{"title": "AML", "severity": float64(3)},
		},
	}

	r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, "", r.Summary)
	assert.NotNil(t, r.Flags[0].Evidence)
	assert.Empty(t, r.Flags[0].Evidence)
}

func TestNormalizeRejectsUntitledFindings(t *testing.T) {
	obj := map[string]any{
		"summary": "s",
		"flags": []any{
			map[string]any{"severity": float64(3)},
			map[string]any{"severity": float64(5)},
		},
	}

	_, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.Error(t, err)
	assert.Equal(t, domain.CodeSchemaInvalid, domain.CodeOf(err))
}

func TestNormalizeClampsEvidencePage(t *testing.T) {
	f := flagWithQuote("q")
	f["evidence"] = []any{map[string]any{"page": float64(-3), "quote": "q"}}
	obj := map[string]any{"summary": "s", "flags": []any{f}}

	r, err := Normalize(obj, "doc.pdf", 1, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Flags[0].Evidence[0].Page)
}

// Round-trip: a well-formed model response normalizes into a report that
// passes the wire schema with no field missing.
func TestNormalizedReportMatchesSchema(t *testing.T) {
	obj := map[string]any{
		"summary":      "This document contains potential cross-border and AML risks.",
		"overall_risk": float64(60),
		"flags":        []any{flagWithQuote("Payments routed via multiple jurisdictions.")},
	}

	r, err := Normalize(obj, "doc.pdf", 2, "u", 1)
	require.NoError(t, err)
	require.NoError(t, ValidateReport(r))
}
