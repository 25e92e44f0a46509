package mysql

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

// Save insert/update Report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO lab_reports
(id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at, deleted)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 test_types=VALUES(test_types),
 status=VALUES(status);
`
	subject := stringOrDash(rep.SubjectID)
	status := stringOrDash(string(rep.Status))
	uploaded := rep.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		rep.ID, subject, rep.Filename, rep.StoragePath,
		joinLabels(rep.TestTypes), rep.RawText, status, uploaded, rep.Deleted,
	)
	return err
}

// Get by ID + subject, soft-deleted rows excluded
func (r *ReportRepository) Get(ctx context.Context, subject string, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at
FROM lab_reports
WHERE subject_id=? AND id=? AND deleted=0 LIMIT 1;
`
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

// ListBySubject returns latest reports per subject, newest first
func (r *ReportRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, subject_id, filename, storage_path, test_types, raw_text, status, uploaded_at
FROM lab_reports
WHERE subject_id=? AND deleted=0 ORDER BY uploaded_at DESC LIMIT ?;
`
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

// UpdateStatus hanya update kolom status
func (r *ReportRepository) UpdateStatus(ctx context.Context, subject string, id domain.ReportID, status domain.Status) error {
	const q = `
UPDATE lab_reports
SET status = ?
WHERE subject_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, status, subject, id)
	return err
}

// SoftDelete flags the row; rows are never physically removed
func (r *ReportRepository) SoftDelete(ctx context.Context, subject string, id domain.ReportID) error {
	const q = `
UPDATE lab_reports
SET deleted = 1
WHERE subject_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, subject, id)
	return err
}
