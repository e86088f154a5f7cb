package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, full_name, email, phone, password_hash,
	COALESCE(gender, ''), COALESCE(date_of_birth, ''), COALESCE(time_of_birth, ''),
	COALESCE(location, ''), is_verified, wallet_balance, created_at`

// Store persists users in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, u *User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, phone, password_hash,
			gender, date_of_birth, time_of_birth, location, is_verified,
			wallet_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.FullName, u.Email, u.Phone, u.PasswordHash,
		u.Gender, u.DateOfBirth, u.TimeOfBirth, u.Location, u.IsVerified,
		u.WalletBalance, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "phone") {
				return ErrPhoneTaken
			}
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Store) ByID(ctx context.Context, id string) (*User, error) {
	return s.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Store) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Gender, &u.DateOfBirth, &u.TimeOfBirth, &u.Location, &u.IsVerified,
		&u.WalletBalance, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the total number of registered users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Delete removes a user. Dependent rows go with it via ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
