package service

import (
	"context"

	"depcatalog/internal/types"
)

// Filter narrows FindAllWithTeam. Empty TeamID and nil IsActive match all.
type Filter struct {
	TeamID   string
	IsActive *bool
}

// Store reads services joined with their team name.
type Store interface {
	FindActiveWithTeam(ctx context.Context) ([]types.ServiceRow, error)
	FindAllWithTeam(ctx context.Context, f Filter) ([]types.ServiceRow, error)
	FindByIDWithTeam(ctx context.Context, id string) (types.ServiceRow, bool, error)
}

// Active is a convenience for Filter.IsActive.
func Active(v bool) *bool { return &v }
