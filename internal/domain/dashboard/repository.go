package dashboard

import "context"

// Repository retrieves dashboard snapshots.
// FindByID returns ErrUnavailable when the dashboard is missing.
type Repository interface {
	FindByID(ctx context.Context, id uint64) (*Dashboard, error)
}
