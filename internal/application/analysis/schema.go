package analysis

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
	"github.com/compliance-copilot/backend/internal/domain/reports"
)

// reportSchema is the wire contract for a normalized report.
const reportSchema = `{
  "type": "object",
  "required": ["doc_name", "summary", "overall_risk", "flags"],
  "properties": {
    "doc_name": {"type": "string"},
    "page_count": {"type": "integer", "minimum": 0},
    "summary": {"type": "string"},
    "overall_risk": {"type": "number", "minimum": 0, "maximum": 100},
    "flags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "severity", "why_it_matters", "recommendation", "evidence"],
        "properties": {
          "title": {"type": "string"},
          "severity": {"type": "integer", "minimum": 1, "maximum": 5},
          "why_it_matters": {"type": "string"},
          "recommendation": {"type": "string"},
          "evidence": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["page", "quote"],
              "properties": {
                "page": {"type": "integer", "minimum": 1},
                "quote": {"type": "string", "maxLength": 600}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledReportSchema = jsonschema.MustCompileString("report.json", reportSchema)

// ValidateReport checks a normalized report against the wire schema. The
// normalizer should make this unreachable; it guards against regressions in
// the tolerance rules.
func ValidateReport(r *reports.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return domain.Wrap(domain.CodeSchemaInvalid, "marshal report", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return domain.Wrap(domain.CodeSchemaInvalid, "unmarshal report", err)
	}
	if err := compiledReportSchema.Validate(v); err != nil {
		return domain.Wrap(domain.CodeSchemaInvalid, "report does not match schema", err)
	}
	return nil
}
