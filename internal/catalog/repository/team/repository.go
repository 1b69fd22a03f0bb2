package team

import (
	"context"

	"depcatalog/internal/types"
)

// Store reads teams. A missing team is reported as ok=false, not an error.
type Store interface {
	FindByID(ctx context.Context, id string) (types.TeamRow, bool, error)
}
