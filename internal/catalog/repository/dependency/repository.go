package dependency

import (
	"context"

	"depcatalog/internal/types"
)

// Options narrows FindAllWithAssociationsAndLatency.
type Options struct {
	ActiveServicesOnly bool
}

// Store reads dependency rows. Rows returned by the *WithAssociationsAndLatency
// methods carry the association join and the rolling 24h latency average;
// FindByServiceID and FindByID return the plain polled rows.
type Store interface {
	FindAllWithAssociationsAndLatency(ctx context.Context, opts Options) ([]types.DependencyRow, error)
	FindByServiceIDsWithAssociationsAndLatency(ctx context.Context, serviceIDs []string) ([]types.DependencyRow, error)
	FindByServiceID(ctx context.Context, serviceID string) ([]types.DependencyRow, error)
	FindByID(ctx context.Context, id string) (types.DependencyRow, bool, error)
}
