package canonical

import (
	"context"

	"depcatalog/internal/types"
)

// Store lists canonical contact/impact overrides, global and team scoped.
type Store interface {
	List(ctx context.Context) ([]types.CanonicalOverride, error)
}
