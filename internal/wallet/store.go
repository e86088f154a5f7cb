package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx exposes the balance-mutation primitives available inside a single
// storage transaction. Every mutation path goes through a Tx so that
// settlement and deduction are all-or-nothing.
type Tx interface {
	OrderForUpdate(ctx context.Context, orderID string) (*PaymentOrder, error)
	CompleteOrder(ctx context.Context, orderID, paymentID string) error
	Credit(ctx context.Context, userID string, amount float64) (float64, error)
	Debit(ctx context.Context, userID string, amount float64) (float64, error)
	Balance(ctx context.Context, userID string) (float64, error)
	AppendTransaction(ctx context.Context, txn *Transaction) error
	TransactionByOrder(ctx context.Context, orderID string) (*Transaction, error)
	MarkBookingPaid(ctx context.Context, bookingType, bookingID string) error
}

// TxStore is the persistence boundary of the wallet service.
type TxStore interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	InsertOrder(ctx context.Context, o *PaymentOrder) error
	IsCompleted(ctx context.Context, orderID string) (bool, error)
	MarkCompleted(ctx context.Context, orderID, paymentID string) error
	Balance(ctx context.Context, userID string) (float64, error)
	Transactions(ctx context.Context, userID string, limit int) ([]*Transaction, error)
	ReplayBalance(ctx context.Context, userID string) (float64, error)
}

// Store is the PostgreSQL implementation of TxStore. Wallet balances live on
// the users table; wallet_transactions is append-only.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore creates a wallet store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// InTx runs fn inside a single database transaction with a deadline.
func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := s.Pool.Acquire(txCtx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(txCtx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(txCtx)

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// InsertOrder persists a gateway order in `created` status.
func (s *Store) InsertOrder(ctx context.Context, o *PaymentOrder) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.Pool.Exec(queryCtx, `
		INSERT INTO payment_orders (id, user_id, amount, currency, purpose, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.UserID, o.Amount, o.Currency, o.Purpose, OrderStatusCreated, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment order: %w", err)
	}

	return nil
}

// IsCompleted reports whether orderID has already settled. It is the
// idempotency guard for duplicate submissions.
func (s *Store) IsCompleted(ctx context.Context, orderID string) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var status string
	err := s.Pool.QueryRow(queryCtx,
		`SELECT status FROM payment_orders WHERE id = $1`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check order status: %w", err)
	}

	return status == OrderStatusCompleted, nil
}

// MarkCompleted transitions an order to `completed` outside settlement
// (admin backfill path). A missing order is a no-op; the caller logs it.
func (s *Store) MarkCompleted(ctx context.Context, orderID, paymentID string) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.Pool.Exec(queryCtx, `
		UPDATE payment_orders
		SET status = $2, payment_id = $3, completed_at = now()
		WHERE id = $1 AND status = $4
	`, orderID, OrderStatusCompleted, paymentID, OrderStatusCreated)
	if err != nil {
		return fmt.Errorf("failed to mark order completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Balance returns the current wallet balance for userID.
func (s *Store) Balance(ctx context.Context, userID string) (float64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var balance float64
	err := s.Pool.QueryRow(queryCtx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// Transactions returns up to limit records for userID, newest first.
func (s *Store) Transactions(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.Pool.Query(queryCtx, `
		SELECT id, user_id, type, amount, balance_after, description,
		       COALESCE(order_id, ''), COALESCE(payment_id, ''),
		       COALESCE(booking_id, ''), COALESCE(booking_type, ''),
		       status, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.BalanceAfter, &t.Description,
			&t.OrderID, &t.PaymentID, &t.BookingID, &t.BookingType,
			&t.Status, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &t)
	}

	return txns, rows.Err()
}

// ReplayBalance sums signed transaction amounts (credits minus debits) for
// userID. The result must equal the stored balance; that is the ledger invariant.
func (s *Store) ReplayBalance(ctx context.Context, userID string) (float64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var total float64
	err := s.Pool.QueryRow(queryCtx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)
		FROM wallet_transactions
		WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to replay transactions: %w", err)
	}

	return total, nil
}

// storeTx implements Tx over a live pgx transaction.
type storeTx struct {
	tx pgx.Tx
}

// OrderForUpdate loads an order and locks its row for the duration of the
// transaction, serializing concurrent settlements of the same order.
func (t *storeTx) OrderForUpdate(ctx context.Context, orderID string) (*PaymentOrder, error) {
	var o PaymentOrder
	var paymentID *string
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, amount, currency, purpose, status, payment_id, created_at, completed_at
		FROM payment_orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&o.ID, &o.UserID, &o.Amount, &o.Currency, &o.Purpose, &o.Status, &paymentID, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if paymentID != nil {
		o.PaymentID = *paymentID
	}

	return &o, nil
}

func (t *storeTx) CompleteOrder(ctx context.Context, orderID, paymentID string) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE payment_orders
		SET status = $2, payment_id = $3, completed_at = now()
		WHERE id = $1
	`, orderID, OrderStatusCompleted, paymentID)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Credit increments the balance atomically and returns the post-increment
// value. The RETURNING clause makes the snapshot exact: there is no separate
// read-back to race against.
func (t *storeTx) Credit(ctx context.Context, userID string, amount float64) (float64, error) {
	var balance float64
	err := t.tx.QueryRow(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING wallet_balance
	`, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to credit balance: %w", err)
	}

	return balance, nil
}

// Debit decrements the balance only when sufficient funds exist. The balance
// check and the mutation are one statement, so concurrent debits cannot
// interleave between read and write.
func (t *storeTx) Debit(ctx context.Context, userID string, amount float64) (float64, error) {
	var balance float64
	err := t.tx.QueryRow(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance - $2, updated_at = now()
		WHERE id = $1 AND wallet_balance >= $2
		RETURNING wallet_balance
	`, userID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to debit balance: %w", err)
	}

	// No row updated: either the account is missing or the balance is short.
	var current float64
	err = t.tx.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to read balance after rejected debit: %w", err)
	}

	return 0, &InsufficientBalanceError{Balance: current, Requested: amount}
}

func (t *storeTx) Balance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := t.tx.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

func (t *storeTx) AppendTransaction(ctx context.Context, txn *Transaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO wallet_transactions (
			id, user_id, type, amount, balance_after, description,
			order_id, payment_id, booking_id, booking_type, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12)
	`, txn.ID, txn.UserID, txn.Type, txn.Amount, txn.BalanceAfter, txn.Description,
		txn.OrderID, txn.PaymentID, txn.BookingID, txn.BookingType, txn.Status, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

func (t *storeTx) TransactionByOrder(ctx context.Context, orderID string) (*Transaction, error) {
	var txn Transaction
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, type, amount, balance_after, description,
		       COALESCE(order_id, ''), COALESCE(payment_id, ''), status, created_at
		FROM wallet_transactions
		WHERE order_id = $1 AND type = 'credit'
	`, orderID).Scan(
		&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &txn.BalanceAfter,
		&txn.Description, &txn.OrderID, &txn.PaymentID, &txn.Status, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transaction for order: %w", err)
	}

	return &txn, nil
}

// MarkBookingPaid flips the linked booking to paid. A missing booking row is
// tolerated; the debit stands on its own.
func (t *storeTx) MarkBookingPaid(ctx context.Context, bookingType, bookingID string) error {
	table, ok := bookingTables[bookingType]
	if !ok {
		return fmt.Errorf("unknown booking type %q", bookingType)
	}

	_, err := t.tx.Exec(ctx,
		`UPDATE `+table+` SET status = 'paid' WHERE id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}

	return nil
}

var bookingTables = map[string]string{
	"astrology":         "bookings",
	"yoga_class":        "yoga_class_bookings",
	"yoga_package":      "yoga_package_purchases",
	"yoga_consultation": "yoga_consultations",
}
