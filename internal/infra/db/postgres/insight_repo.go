package postgres

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

// Upsert insert-or-update by report_id, last write wins
func (r *InsightRepository) Upsert(ctx context.Context, in *domain.Insight) error {
	const q = `
INSERT INTO report_insights
(id, report_id, insights, recommendations, warnings, follow_ups, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (report_id) DO UPDATE SET
 id=EXCLUDED.id,
 insights=EXCLUDED.insights,
 recommendations=EXCLUDED.recommendations,
 warnings=EXCLUDED.warnings,
 follow_ups=EXCLUDED.follow_ups,
 created_at=EXCLUDED.created_at;
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

func (r *InsightRepository) GetByReport(ctx context.Context, reportID string) (*domain.Insight, error) {
	const q = `
SELECT id, report_id, insights, recommendations, warnings, follow_ups, created_at
FROM report_insights
WHERE report_id=$1
LIMIT 1;`
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
