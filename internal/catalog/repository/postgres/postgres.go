// Package postgres opens the catalog database and owns its schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Open connects through the pgx database/sql driver and verifies the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the catalog tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS teams (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS services (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  team_id TEXT NOT NULL REFERENCES teams (id),
  health_endpoint TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  last_poll_success BOOLEAN,
  last_poll_error TEXT,
  last_polled_at TIMESTAMP WITH TIME ZONE
);
CREATE INDEX IF NOT EXISTS idx_services_team_id ON services (team_id);

CREATE TABLE IF NOT EXISTS dependencies (
  id TEXT PRIMARY KEY,
  service_id TEXT NOT NULL REFERENCES services (id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  canonical_name TEXT,
  type TEXT NOT NULL DEFAULT 'other',
  healthy BOOLEAN,
  skipped BOOLEAN NOT NULL DEFAULT FALSE,
  latency_ms BIGINT,
  check_details TEXT,
  error TEXT,
  error_message TEXT,
  impact TEXT,
  contact TEXT,
  contact_override TEXT,
  impact_override TEXT,
  last_checked TIMESTAMP WITH TIME ZONE
);
CREATE INDEX IF NOT EXISTS idx_dependencies_service_id ON dependencies (service_id);

CREATE TABLE IF NOT EXISTS dependency_associations (
  id TEXT PRIMARY KEY,
  dependency_id TEXT NOT NULL REFERENCES dependencies (id) ON DELETE CASCADE,
  linked_service_id TEXT NOT NULL REFERENCES services (id) ON DELETE CASCADE,
  association_type TEXT NOT NULL DEFAULT 'other',
  is_auto_suggested BOOLEAN NOT NULL DEFAULT FALSE,
  confidence_score DOUBLE PRECISION,
  is_dismissed BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dependency_associations_dependency_id ON dependency_associations (dependency_id);

CREATE TABLE IF NOT EXISTS dependency_latency_history (
  id BIGSERIAL PRIMARY KEY,
  dependency_id TEXT NOT NULL REFERENCES dependencies (id) ON DELETE CASCADE,
  latency_ms BIGINT NOT NULL,
  recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_latency_history_dep_time ON dependency_latency_history (dependency_id, recorded_at);

CREATE TABLE IF NOT EXISTS canonical_overrides (
  id TEXT PRIMARY KEY,
  canonical_name TEXT NOT NULL,
  team_id TEXT REFERENCES teams (id) ON DELETE CASCADE,
  contact_override TEXT,
  impact_override TEXT,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_canonical_overrides_scope
  ON canonical_overrides (canonical_name, COALESCE(team_id, ''));
`)
	if err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// NullString converts a nullable column into a *string.
func NullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// NullBool converts a nullable column into a *bool.
func NullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
