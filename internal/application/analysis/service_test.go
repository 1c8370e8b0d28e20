package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/domain/reports"
)

const validModelJSON = `{
  "summary": "This document contains potential cross-border and AML risks.",
  "overall_risk": 60,
  "flags": [
    {
      "title": "Cross-Border Transactions",
      "severity": 4,
      "why_it_matters": "May trigger additional KYC/AML checks.",
      "recommendation": "Implement enhanced due diligence.",
      "evidence": [{"page": 2, "quote": "Payments routed via multiple jurisdictions."}]
    }
  ]
}`

type fakeExtractor struct {
	text  string
	pages int
	err   error
}

func (f *fakeExtractor) Extract(data []byte) (string, int, error) {
	return f.text, f.pages, f.err
}

type fakeModel struct {
	responses []string // consumed in order across Analyze then AnalyzeStrict
	errs      []error
	calls     int
	strict    int
}

func (f *fakeModel) next() (string, error) {
	i := f.calls
	f.calls++
	var resp string
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func (f *fakeModel) Analyze(ctx context.Context, text string) (string, error) {
	return f.next()
}

func (f *fakeModel) AnalyzeStrict(ctx context.Context, text string) (string, error) {
	f.strict++
	return f.next()
}

type fakeRepo struct {
	saved []*reports.Report
	err   error
}

func (f *fakeRepo) Save(ctx context.Context, r *reports.Report) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRepo) Latest(ctx context.Context, userID string, limit int) ([]*reports.Report, error) {
	out := f.saved
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(model *fakeModel, repo *fakeRepo) *Service {
	svc := &Service{
		Extractor:      &fakeExtractor{text: "[Page 1]\nsome contract text", pages: 1},
		Model:          model,
		Clock:          fixedClock{t: time.UnixMilli(1700000000000)},
		MaxUploadBytes: 10 * 1024 * 1024,
	}
	// assign through a nil check so a nil *fakeRepo stays a nil interface
	if repo != nil {
		svc.Repo = repo
	}
	return svc
}

func validCmd() AnalyzeCommand {
	return AnalyzeCommand{Filename: "doc.pdf", Data: []byte("%PDF-1.4"), UserID: "u1"}
}

func TestAnalyzeSuccess(t *testing.T) {
	model := &fakeModel{responses: []string{validModelJSON}}
	repo := &fakeRepo{}
	svc := newTestService(model, repo)

	report, err := svc.Analyze(context.Background(), validCmd(), nil)
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", report.DocName)
	assert.Equal(t, 1, report.PageCount)
	assert.Equal(t, 60.0, report.OverallRisk)
	assert.Equal(t, int64(1700000000000), report.TS)
	require.Len(t, report.Flags, 1)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 0, model.strict)
	require.Len(t, repo.saved, 1)
}

func TestAnalyzeRetriesOnceOnParseFailure(t *testing.T) {
	model := &fakeModel{responses: []string{"Sorry, here is prose with no JSON.", validModelJSON}}
	svc := newTestService(model, nil)

	report, err := svc.Analyze(context.Background(), validCmd(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, 1, model.strict)
	assert.Equal(t, "This document contains potential cross-border and AML risks.", report.Summary)
}

func TestAnalyzeFailsAfterTwoBadResponses(t *testing.T) {
	model := &fakeModel{responses: []string{"not json", "still not json"}}
	svc := newTestService(model, nil)

	_, err := svc.Analyze(context.Background(), validCmd(), nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeModelOutputInvalid, domain.CodeOf(err))
	assert.Equal(t, 2, model.calls)
}

func TestAnalyzeUpstreamErrorNotRetried(t *testing.T) {
	model := &fakeModel{
		errs: []error{domain.E(domain.CodeUpstreamError, "model API request timed out")},
	}
	svc := newTestService(model, nil)

	_, err := svc.Analyze(context.Background(), validCmd(), nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstreamError, domain.CodeOf(err))
	assert.Equal(t, 1, model.calls)
}

func TestAnalyzeExtractionFailureStopsPipeline(t *testing.T) {
	model := &fakeModel{responses: []string{validModelJSON}}
	svc := newTestService(model, nil)
	svc.Extractor = &fakeExtractor{err: domain.E(domain.CodeExtractionFailed, "could not extract text from PDF")}

	var stages []string
	_, err := svc.Analyze(context.Background(), validCmd(), func(stage string, payload map[string]any) {
		stages = append(stages, stage)
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeExtractionFailed, domain.CodeOf(err))
	assert.Equal(t, 0, model.calls, "model must not be called after failed extraction")
	assert.Equal(t, []string{StageIngest}, stages)
}

func TestAnalyzeStageOrder(t *testing.T) {
	model := &fakeModel{responses: []string{validModelJSON}}
	svc := newTestService(model, nil)

	var stages []string
	_, err := svc.Analyze(context.Background(), validCmd(), func(stage string, payload map[string]any) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StageIngest, StageExtract, StageAnalyze}, stages)
}

func TestAnalyzeValidatesBeforeAnyWork(t *testing.T) {
	model := &fakeModel{responses: []string{validModelJSON}}
	svc := newTestService(model, nil)

	cmd := validCmd()
	cmd.Filename = "doc.txt"

	var stages []string
	_, err := svc.Analyze(context.Background(), cmd, func(stage string, payload map[string]any) {
		stages = append(stages, stage)
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidFormat, domain.CodeOf(err))
	assert.Empty(t, stages)
	assert.Equal(t, 0, model.calls)
}

func TestAnalyzeSwallowsPersistenceFailure(t *testing.T) {
	model := &fakeModel{responses: []string{validModelJSON}}
	repo := &fakeRepo{err: errors.New("db down")}
	svc := newTestService(model, repo)

	report, err := svc.Analyze(context.Background(), validCmd(), nil)
	require.NoError(t, err, "persistence failure must never fail the analysis")
	assert.NotNil(t, report)
}

func TestListReportsDefaultsAndCaps(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 30; i++ {
		repo.saved = append(repo.saved, &reports.Report{DocName: "d.pdf"})
	}
	svc := newTestService(&fakeModel{}, repo)

	out, err := svc.ListReports(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, out, 20)

	out, err = svc.ListReports(context.Background(), "u1", 500)
	require.NoError(t, err)
	assert.Len(t, out, 30)
}

func TestListReportsWithoutRepo(t *testing.T) {
	svc := newTestService(&fakeModel{}, nil)
	out, err := svc.ListReports(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}
