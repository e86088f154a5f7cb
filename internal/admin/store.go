package admin

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs the operator-facing queries. These are cross-table by nature, so
// it works on the pool directly rather than going through the domain stores.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) DashboardStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM yoga_class_bookings),
			(SELECT COUNT(*) FROM yoga_package_purchases),
			(SELECT COUNT(*) FROM yoga_consultations),
			(SELECT COUNT(*) FROM payment_orders),
			(SELECT COUNT(*) FROM payment_orders WHERE status = 'completed'),
			(SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE type = 'credit'),
			(SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE type = 'debit'),
			(SELECT COALESCE(SUM(wallet_balance), 0) FROM users)`).Scan(
		&st.TotalUsers, &st.TotalBookings, &st.YogaClassBookings,
		&st.YogaPackages, &st.YogaConsultations, &st.PaymentOrders,
		&st.CompletedOrders, &st.CreditVolume, &st.DebitVolume,
		&st.WalletBalanceTotal)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

const astrologerColumns = `id, name, expertise, experience, languages,
	price_per_session, is_active, created_at`

func (s *Store) InsertAstrologer(ctx context.Context, a *Astrologer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO astrologers (id, name, expertise, experience, languages,
			price_per_session, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Name, a.Expertise, a.Experience, a.Languages,
		a.PricePerSession, a.IsActive, a.CreatedAt)
	return err
}

func (s *Store) UpdateAstrologer(ctx context.Context, a *Astrologer) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE astrologers
		SET name = $2, expertise = $3, experience = $4, languages = $5,
			price_per_session = $6, is_active = $7
		WHERE id = $1`,
		a.ID, a.Name, a.Expertise, a.Experience, a.Languages,
		a.PricePerSession, a.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAstrologerNotFound
	}
	return nil
}

func (s *Store) DeleteAstrologer(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM astrologers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAstrologerNotFound
	}
	return nil
}

func (s *Store) AstrologerByID(ctx context.Context, id string) (*Astrologer, error) {
	var a Astrologer
	err := s.pool.QueryRow(ctx,
		`SELECT `+astrologerColumns+` FROM astrologers WHERE id = $1`, id).Scan(
		&a.ID, &a.Name, &a.Expertise, &a.Experience, &a.Languages,
		&a.PricePerSession, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAstrologerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAstrologers(ctx context.Context) ([]*Astrologer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+astrologerColumns+` FROM astrologers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Astrologer{}
	for rows.Next() {
		var a Astrologer
		if err := rows.Scan(&a.ID, &a.Name, &a.Expertise, &a.Experience,
			&a.Languages, &a.PricePerSession, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// PurgeUser deletes a user. The schema cascades to bookings, orders and
// transactions, so a single delete inside a transaction covers everything.
func (s *Store) PurgeUser(ctx context.Context, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// LedgerConsistency replays every account's transaction history and compares
// it with the stored balance.
func (s *Store) LedgerConsistency(ctx context.Context) (*ConsistencyReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.wallet_balance,
			COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount
			                  WHEN t.type = 'debit' THEN -t.amount END), 0)
		FROM users u
		LEFT JOIN wallet_transactions t ON t.user_id = u.id
		GROUP BY u.id, u.wallet_balance`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &ConsistencyReport{Mismatches: []Mismatch{}}
	for rows.Next() {
		var userID string
		var stored, replayed float64
		if err := rows.Scan(&userID, &stored, &replayed); err != nil {
			return nil, err
		}
		report.CheckedAccounts++
		if stored != replayed {
			report.Mismatches = append(report.Mismatches, Mismatch{
				UserID: userID, Stored: stored, Replayed: replayed,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	report.Consistent = len(report.Mismatches) == 0
	return report, nil
}
