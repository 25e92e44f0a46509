package reports

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Get(ctx context.Context, subject string, id ReportID) (*Report, error)
	ListBySubject(ctx context.Context, subject string, limit int) ([]*Report, error)
	UpdateStatus(ctx context.Context, subject string, id ReportID, status Status) error
	SoftDelete(ctx context.Context, subject string, id ReportID) error
}

// DocumentStore port (interface untuk penyimpanan dokumen mentah)
type DocumentStore interface {
	Put(ctx context.Context, subject, filename string, data []byte) (string, error)
	PublicURL(storagePath string) string
}

// ErrorLog port for the processing-error audit trail
type ErrorLog interface {
	Save(ctx context.Context, e *ProcessingError) error
	ListByReport(ctx context.Context, subject string, id ReportID, limit int) ([]*ProcessingError, error)
}
