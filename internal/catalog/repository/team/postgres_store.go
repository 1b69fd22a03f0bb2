package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"depcatalog/internal/types"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (types.TeamRow, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.TeamRow{}, false, nil
	}
	var t types.TeamRow
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TeamRow{}, false, nil
	}
	if err != nil {
		return types.TeamRow{}, false, fmt.Errorf("find team %s: %w", id, err)
	}
	return t, true, nil
}
