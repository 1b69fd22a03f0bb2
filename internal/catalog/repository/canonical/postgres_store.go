package canonical

import (
	"context"
	"database/sql"
	"fmt"

	"depcatalog/internal/types"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]types.CanonicalOverride, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, canonical_name, team_id, contact_override, impact_override, updated_at
FROM canonical_overrides
ORDER BY canonical_name ASC, updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query canonical overrides: %w", err)
	}
	defer rows.Close()

	out := make([]types.CanonicalOverride, 0, 16)
	for rows.Next() {
		var o types.CanonicalOverride
		if err := rows.Scan(&o.ID, &o.CanonicalName, &o.TeamID, &o.ContactOverride, &o.ImpactOverride, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan canonical override: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canonical overrides: %w", err)
	}
	return out, nil
}
