package reports

import "context"

// Repository port for persisting and listing reports.
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Latest(ctx context.Context, userID string, limit int) ([]*Report, error)
}
