package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/pulseboard/lab-analysis/internal/domain/reports"
)

type ReportErrorRepository struct {
	db *sql.DB
}

func NewReportErrorRepository(db *sql.DB) *ReportErrorRepository {
	return &ReportErrorRepository{db: db}
}

// Save appends one audit entry; id is auto-increment
func (r *ReportErrorRepository) Save(ctx context.Context, e *domain.ProcessingError) error {
	const q = `
INSERT INTO report_errors
(subject_id, report_id, phase, message, created_at)
VALUES (?,?,?,?,?);
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.SubjectID), e.ReportID, e.Phase, e.Message, createdAt,
	)
	return err
}

// ListByReport returns newest entries first
func (r *ReportErrorRepository) ListByReport(ctx context.Context, subject string, id domain.ReportID, limit int) ([]*domain.ProcessingError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, subject_id, report_id, phase, message, created_at
FROM report_errors
WHERE subject_id=? AND report_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, subject, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ProcessingError
	for rows.Next() {
		var e domain.ProcessingError
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.ReportID, &e.Phase, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
