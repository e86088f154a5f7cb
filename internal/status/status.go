// Package status implements the legacy status-check ping endpoints.
package status

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Check struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	CreatedAt  time.Time `json:"timestamp"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, clientName string) (*Check, error) {
	c := &Check{
		ID:         uuid.NewString(),
		ClientName: clientName,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO status_checks (id, client_name, created_at)
		VALUES ($1, $2, $3)`, c.ID, c.ClientName, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*Check, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_name, created_at FROM status_checks
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Check{}
	for rows.Next() {
		var c Check
		if err := rows.Scan(&c.ID, &c.ClientName, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
