package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/compliance-copilot/backend/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts a report row. Flags are stored as a JSON blob; the column
// requires valid JSON so an empty list is written as [].
func (r *ReportRepository) Save(ctx context.Context, rep *reports.Report) error {
	flags, err := json.Marshal(rep.Flags)
	if err != nil {
		return err
	}
	payload := string(flags)
	if strings.TrimSpace(payload) == "" {
		payload = "[]"
	}

	const q = `
INSERT INTO reports (user_id, doc_name, summary, overall_risk, flags, ts)
VALUES (?, ?, ?, ?, ?, ?);
`
	res, err := r.db.ExecContext(ctx, q,
		rep.UserID, rep.DocName, rep.Summary, rep.OverallRisk, payload, rep.TS)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rep.ID = id
	}
	return nil
}

// Latest returns up to limit reports for a user, most recent first.
func (r *ReportRepository) Latest(ctx context.Context, userID string, limit int) ([]*reports.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, doc_name, summary, overall_risk, flags, ts
FROM reports
WHERE user_id = ?
ORDER BY ts DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*reports.Report
	for rows.Next() {
		var rep reports.Report
		var flags string
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.DocName, &rep.Summary,
			&rep.OverallRisk, &flags, &rep.TS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(flags), &rep.Flags); err != nil {
			rep.Flags = []reports.Flag{}
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}
