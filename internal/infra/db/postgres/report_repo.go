package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/pulseboard/lab-analysis/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts or updates a report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO lab_reports
(id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at, deleted)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 test_types=EXCLUDED.test_types,
 status=EXCLUDED.status;
`
	uploaded := rep.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, stringOrDash(rep.SubjectID), rep.Filename, rep.StoragePath,
		joinLabels(rep.TestTypes), rep.RawText, stringOrDash(string(rep.Status)), uploaded, rep.Deleted,
	)
	return err
}

func (r *ReportRepository) Get(ctx context.Context, subject string, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at
FROM lab_reports
WHERE subject_id=$1 AND id=$2 AND deleted=false
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, subject, id)

	var rep domain.Report
	var labels string
	if err := row.Scan(
		&rep.ID, &rep.SubjectID, &rep.Filename, &rep.StoragePath,
		&labels, &rep.RawText, &rep.Status, &rep.UploadedAt,
	); err != nil {
		return nil, err
	}
	rep.TestTypes = splitLabels(labels)
	return &rep, nil
}

func (r *ReportRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at
FROM lab_reports
WHERE subject_id=$1 AND deleted=false
ORDER BY uploaded_at DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, subject, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		var rep domain.Report
		var labels string
		if err := rows.Scan(
			&rep.ID, &rep.SubjectID, &rep.Filename, &rep.StoragePath,
			&labels, &rep.RawText, &rep.Status, &rep.UploadedAt,
		); err != nil {
			return nil, err
		}
		rep.TestTypes = splitLabels(labels)
		out = append(out, &rep)
	}
	return out, rows.Err()
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, subject string, id domain.ReportID, status domain.Status) error {
	const q = `UPDATE lab_reports SET status=$1 WHERE subject_id=$2 AND id=$3;`
	_, err := r.db.ExecContext(ctx, q, status, subject, id)
	return err
}

func (r *ReportRepository) SoftDelete(ctx context.Context, subject string, id domain.ReportID) error {
	const q = `UPDATE lab_reports SET deleted=true WHERE subject_id=$1 AND id=$2;`
	_, err := r.db.ExecContext(ctx, q, subject, id)
	return err
}
