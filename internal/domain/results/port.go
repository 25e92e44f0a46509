package results

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	SaveAll(ctx context.Context, rs []*Result) error
	ListByReport(ctx context.Context, reportID string) ([]*Result, error)
}
