package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/domain/reports"
)

// maxPromptChars bounds how much extracted text is sent to the model, to keep
// cost and latency predictable on large documents.
const maxPromptChars = 8000

// Pipeline stages reported to the client before the terminal event.
const (
	StageIngest  = "ingest"
	StageExtract = "extract"
	StageAnalyze = "analyze"
)

// Progress receives staged pipeline events. May be nil for callers that do
// not stream. Invoked strictly in stage order.
type Progress func(stage string, payload map[string]any)

// Clock abstraction so timestamps are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service implements the streamed-analysis pipeline. Safe for concurrent use:
// all mutable state lives in the request scope, shared clients are
// concurrency-safe per their own documentation.
type Service struct {
	Extractor domain.TextExtractor
	Model     domain.ModelClient
	Repo      reports.Repository     // nil when no database is configured
	Archive   domain.DocumentArchive // nil when no archive is configured
	Clock     Clock
	Logger    *slog.Logger

	MaxUploadBytes int64
}

// AnalyzeCommand carries one validated upload through the pipeline.
type AnalyzeCommand struct {
	Filename string
	Data     []byte
	UserID   string
}

// ValidateUpload applies the configured size ceiling.
func (s *Service) ValidateUpload(filename string, size int64) error {
	return ValidateUpload(filename, size, s.MaxUploadBytes)
}

// Analyze runs validation, extraction, the model call with one JSON-repair
// retry, normalization, and best-effort persistence. Progress events are
// emitted in fixed stage order; persistence failures never fail the result.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand, progress Progress) (*reports.Report, error) {
	if err := s.ValidateUpload(cmd.Filename, int64(len(cmd.Data))); err != nil {
		return nil, err
	}
	emit := progress
	if emit == nil {
		emit = func(string, map[string]any) {}
	}

	emit(StageIngest, map[string]any{
		"filename": cmd.Filename,
		"size_mb":  float64(len(cmd.Data)) / (1024 * 1024),
	})

	text, pages, err := s.Extractor.Extract(cmd.Data)
	if err != nil {
		return nil, err
	}

	emit(StageExtract, map[string]any{"pages": pages, "chars": len(text)})
	emit(StageAnalyze, map[string]any{"status": "started"})

	obj, err := s.callModel(ctx, text)
	if err != nil {
		return nil, err
	}

	report, err := Normalize(obj, cmd.Filename, pages, cmd.UserID, s.Clock.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	if err := ValidateReport(report); err != nil {
		return nil, err
	}

	s.persist(ctx, cmd, report)
	return report, nil
}

// callModel is the explicit two-attempt loop: one standard call, and on a
// parse failure exactly one stricter retry. Upstream failures are never
// retried.
func (s *Service) callModel(ctx context.Context, text string) (map[string]any, error) {
	input := text
	if len(input) > maxPromptChars {
		input = input[:maxPromptChars]
	}

	raw, err := s.Model.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	obj, parseErr := ExtractJSON(raw)
	if parseErr == nil {
		return obj, nil
	}

	s.logger().Warn("model returned unparseable JSON, retrying strict", "error", parseErr)

	raw, err = s.Model.AnalyzeStrict(ctx, input)
	if err != nil {
		return nil, err
	}
	obj, parseErr = ExtractJSON(raw)
	if parseErr != nil {
		return nil, domain.Wrap(domain.CodeModelOutputInvalid,
			"model did not return valid JSON after retry", parseErr)
	}
	return obj, nil
}

// persist archives the document and saves the report, best-effort. The user
// already has their result; storage failures are logged and swallowed.
func (s *Service) persist(ctx context.Context, cmd AnalyzeCommand, report *reports.Report) {
	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s.pdf", cmd.UserID, uuid.New().String())
		if url, err := s.Archive.Put(ctx, key, cmd.Data, "application/pdf"); err != nil {
			s.logger().Warn("document archive failed", "key", key, "error", err)
		} else {
			s.logger().Info("document archived", "url", url)
		}
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, report); err != nil {
			s.logger().Warn("report save failed", "doc", report.DocName, "error", err)
		}
	}
}

// ListReports returns the most recent reports for a user, default limit 20,
// capped at 100.
func (s *Service) ListReports(ctx context.Context, userID string, limit int) ([]*reports.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if s.Repo == nil {
		return []*reports.Report{}, nil
	}
	out, err := s.Repo.Latest(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*reports.Report{}
	}
	return out, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
