package insights

import "context"

// Repository port; Upsert must be insert-or-update by report id
type Repository interface {
	Upsert(ctx context.Context, in *Insight) error
	GetByReport(ctx context.Context, reportID string) (*Insight, error)
}
