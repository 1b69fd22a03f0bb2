package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"depcatalog/internal/catalog/repository/postgres"
	"depcatalog/internal/types"
)

const selectWithTeam = `
SELECT s.id, s.name, s.team_id, t.name, s.health_endpoint, s.is_active,
  s.last_poll_success, s.last_poll_error, s.last_polled_at
FROM services s
JOIN teams t ON t.id = s.team_id`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindActiveWithTeam(ctx context.Context) ([]types.ServiceRow, error) {
	return s.FindAllWithTeam(ctx, Filter{IsActive: Active(true)})
}

func (s *PostgresStore) FindAllWithTeam(ctx context.Context, f Filter) ([]types.ServiceRow, error) {
	var (
		where []string
		args  []any
	)
	if tid := strings.TrimSpace(f.TeamID); tid != "" {
		args = append(args, tid)
		where = append(where, fmt.Sprintf("s.team_id = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("s.is_active = $%d", len(args)))
	}
	query := selectWithTeam
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY s.name ASC, s.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	out := make([]types.ServiceRow, 0, 32)
	for rows.Next() {
		row, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByIDWithTeam(ctx context.Context, id string) (types.ServiceRow, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.ServiceRow{}, false, nil
	}
	row, err := scanService(s.db.QueryRowContext(ctx, selectWithTeam+"\nWHERE s.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ServiceRow{}, false, nil
	}
	if err != nil {
		return types.ServiceRow{}, false, fmt.Errorf("find service %s: %w", id, err)
	}
	return row, true, nil
}

func scanService(row postgres.RowScanner) (types.ServiceRow, error) {
	var (
		svc         types.ServiceRow
		pollSuccess sql.NullBool
		pollError   sql.NullString
		polledAt    sql.NullTime
	)
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.TeamID,
		&svc.TeamName,
		&svc.HealthEndpoint,
		&svc.IsActive,
		&pollSuccess,
		&pollError,
		&polledAt,
	)
	if err != nil {
		return types.ServiceRow{}, err
	}
	svc.LastPollSuccess = postgres.NullBool(pollSuccess)
	svc.LastPollError = postgres.NullString(pollError)
	if polledAt.Valid {
		t := polledAt.Time
		svc.LastPolledAt = &t
	}
	return svc, nil
}
