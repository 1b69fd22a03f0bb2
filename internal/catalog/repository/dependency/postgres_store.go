package dependency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"depcatalog/internal/catalog/repository/postgres"
	"depcatalog/internal/types"
)

const baseColumns = `d.id, d.service_id, d.name, d.canonical_name, d.type, d.healthy, d.skipped,
  d.latency_ms, d.check_details, d.error, d.error_message, d.impact, d.contact,
  d.contact_override, d.impact_override, d.last_checked`

// The first non-dismissed association wins when a dependency has several.
const selectWithAssociations = `
SELECT ` + baseColumns + `,
  da.linked_service_id, da.association_type, COALESCE(da.is_auto_suggested, FALSE),
  da.confidence_score, lh.avg_latency
FROM dependencies d
JOIN services s ON s.id = d.service_id
LEFT JOIN LATERAL (
  SELECT linked_service_id, association_type, is_auto_suggested, confidence_score
  FROM dependency_associations
  WHERE dependency_id = d.id AND is_dismissed = FALSE
  ORDER BY created_at ASC, id ASC
  LIMIT 1
) da ON TRUE
LEFT JOIN LATERAL (
  SELECT AVG(latency_ms)::DOUBLE PRECISION AS avg_latency
  FROM dependency_latency_history
  WHERE dependency_id = d.id AND recorded_at >= NOW() - INTERVAL '24 hours'
) lh ON TRUE`

const orderBy = "\nORDER BY d.service_id ASC, d.name ASC, d.id ASC"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindAllWithAssociationsAndLatency(ctx context.Context, opts Options) ([]types.DependencyRow, error) {
	query := selectWithAssociations
	if opts.ActiveServicesOnly {
		query += "\nWHERE s.is_active = TRUE"
	}
	return s.queryJoined(ctx, query+orderBy)
}

func (s *PostgresStore) FindByServiceIDsWithAssociationsAndLatency(ctx context.Context, serviceIDs []string) ([]types.DependencyRow, error) {
	ids := compactIDs(serviceIDs)
	if len(ids) == 0 {
		return []types.DependencyRow{}, nil
	}
	return s.queryJoined(ctx, selectWithAssociations+"\nWHERE d.service_id = ANY($1)"+orderBy, ids)
}

func (s *PostgresStore) FindByServiceID(ctx context.Context, serviceID string) ([]types.DependencyRow, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return []types.DependencyRow{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+baseColumns+`
FROM dependencies d
WHERE d.service_id = $1`+orderBy, serviceID)
	if err != nil {
		return nil, fmt.Errorf("query dependencies of %s: %w", serviceID, err)
	}
	defer rows.Close()

	out := make([]types.DependencyRow, 0, 16)
	for rows.Next() {
		var dep types.DependencyRow
		if err := rows.Scan(baseTargets(&dep)...); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		out = append(out, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (types.DependencyRow, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.DependencyRow{}, false, nil
	}
	var dep types.DependencyRow
	err := s.db.QueryRowContext(ctx, `SELECT `+baseColumns+`
FROM dependencies d
WHERE d.id = $1`, id).Scan(baseTargets(&dep)...)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DependencyRow{}, false, nil
	}
	if err != nil {
		return types.DependencyRow{}, false, fmt.Errorf("find dependency %s: %w", id, err)
	}
	return dep, true, nil
}

func (s *PostgresStore) queryJoined(ctx context.Context, query string, args ...any) ([]types.DependencyRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	out := make([]types.DependencyRow, 0, 64)
	for rows.Next() {
		dep, err := scanJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		out = append(out, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return out, nil
}

func scanJoined(row postgres.RowScanner) (types.DependencyRow, error) {
	var (
		dep        types.DependencyRow
		target     sql.NullString
		assocType  sql.NullString
		confidence sql.NullFloat64
		avgLatency sql.NullFloat64
	)
	dest := append(baseTargets(&dep), &target, &assocType, &dep.IsAutoSuggested, &confidence, &avgLatency)
	if err := row.Scan(dest...); err != nil {
		return types.DependencyRow{}, err
	}
	dep.TargetServiceID = postgres.NullString(target)
	dep.AssociationType = postgres.NullString(assocType)
	if confidence.Valid {
		v := confidence.Float64
		dep.ConfidenceScore = &v
	}
	if avgLatency.Valid {
		v := avgLatency.Float64
		dep.AvgLatency24h = &v
	}
	return dep, nil
}

// baseTargets returns scan destinations for baseColumns. Nullable columns
// scan straight into the row's pointer fields.
func baseTargets(dep *types.DependencyRow) []any {
	return []any{
		&dep.ID,
		&dep.ServiceID,
		&dep.Name,
		&dep.CanonicalName,
		&dep.Type,
		&dep.Healthy,
		&dep.Skipped,
		&dep.LatencyMs,
		&dep.CheckDetails,
		&dep.Error,
		&dep.ErrorMessage,
		&dep.Impact,
		&dep.Contact,
		&dep.ContactOverride,
		&dep.ImpactOverride,
		&dep.LastChecked,
	}
}

func compactIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
