// Package statuscheck is deployment-health bookkeeping: clients post a
// name, the row is timestamped and listed back. It shares nothing with
// the palette domain beyond the database connection.
package statuscheck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists status checks in PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, clientName string) (StatusCheck, error) {
	check := StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO status_checks (id, client_name, created_at)
		VALUES ($1, $2, $3)
	`, check.ID, check.ClientName, check.Timestamp)
	if err != nil {
		return StatusCheck{}, fmt.Errorf("insert status check: %w", err)
	}
	return check, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]StatusCheck, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, client_name, created_at
		FROM status_checks
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query status checks: %w", err)
	}
	defer rows.Close()

	var checks []StatusCheck
	for rows.Next() {
		var c StatusCheck
		if err := rows.Scan(&c.ID, &c.ClientName, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan status check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
