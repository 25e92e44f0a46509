package postgres

import (
	"context"
	"database/sql"

	domain "github.com/pulseboard/lab-analysis/internal/domain/results"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) SaveAll(ctx context.Context, rs []*domain.Result) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO lab_results
(id, report_id, position, biomarker, value, unit, ref_range, status, category)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
	for i, res := range rs {
		if _, err := tx.ExecContext(ctx, q,
			res.ID, res.ReportID, i, res.Biomarker, res.Value,
			res.Unit, res.ReferenceRange, stringOrDash(string(res.Status)), res.Category,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *ResultRepository) ListByReport(ctx context.Context, reportID string) ([]*domain.Result, error) {
	const q = `
SELECT id, report_id, biomarker, value, unit, ref_range, status, category
FROM lab_results
WHERE report_id=$1
ORDER BY position ASC;`
	rows, err := r.db.QueryContext(ctx, q, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		var res domain.Result
		if err := rows.Scan(
			&res.ID, &res.ReportID, &res.Biomarker, &res.Value,
			&res.Unit, &res.ReferenceRange, &res.Status, &res.Category,
		); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
