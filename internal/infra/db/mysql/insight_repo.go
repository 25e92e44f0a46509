package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/pulseboard/lab-analysis/internal/domain/insights"
)

type InsightRepository struct {
	db *sql.DB
}

func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Upsert insert-or-update by report_id (unique key), last write wins.
// Re-running an analysis therefore never duplicates the insight row.
func (r *InsightRepository) Upsert(ctx context.Context, in *domain.Insight) error {
	const q = `
INSERT INTO report_insights
(id, report_id, insights, recommendations, warnings, follow_ups, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 id=VALUES(id),
 insights=VALUES(insights),
 recommendations=VALUES(recommendations),
 warnings=VALUES(warnings),
 follow_ups=VALUES(follow_ups),
 created_at=VALUES(created_at);
`
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		in.ID, in.ReportID,
		jsonList(in.Insights), jsonList(in.Recommendations),
		jsonList(in.Warnings), jsonList(in.FollowUps),
		createdAt,
	)
	return err
}

// GetByReport returns nil when the report has no insight yet; that is a
// valid, displayable state, not an error.
func (r *InsightRepository) GetByReport(ctx context.Context, reportID string) (*domain.Insight, error) {
	const q = `
SELECT id, report_id, insights, recommendations, warnings, follow_ups, created_at
FROM report_insights
WHERE report_id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, reportID)

	var in domain.Insight
	var ins, recs, warns, fups string
	if err := row.Scan(&in.ID, &in.ReportID, &ins, &recs, &warns, &fups, &in.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	in.Insights = parseJSONList(ins)
	in.Recommendations = parseJSONList(recs)
	in.Warnings = parseJSONList(warns)
	in.FollowUps = parseJSONList(fups)
	return &in, nil
}
