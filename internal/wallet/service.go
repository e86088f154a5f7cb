package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Durgesh2022/yoga-app/internal/gateway"
)

// Gateway is the slice of the payment gateway the wallet needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
}

// Publisher emits wallet events after a mutation commits. Implementations
// must not block settlement; failures are the publisher's problem.
type Publisher interface {
	Publish(subject string, v any)
}

// Service orchestrates order creation, settlement and deduction over the
// store and the gateway. All collaborators are injected; tests use fakes.
type Service struct {
	store   TxStore
	gateway Gateway
	events  Publisher
	logger  *slog.Logger
}

// NewService creates a wallet service. events may be nil.
func NewService(store TxStore, gw Gateway, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gateway: gw, events: events, logger: logger}
}

// CreateOrderResult is returned to the client so it can open the gateway's
// checkout. Amount is in minor units.
type CreateOrderResult struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreateOrder allocates a gateway order and tracks it in `created` status.
// No balance is touched.
func (s *Service) CreateOrder(ctx context.Context, userID string, amount float64, currency, purpose string) (*CreateOrderResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	if currency == "" {
		currency = "INR"
	}

	// Fail fast on unknown accounts before involving the gateway.
	if _, err := s.store.Balance(ctx, userID); err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, MinorUnits(amount), currency, receipt)
	if err != nil {
		s.logger.Error("gateway order creation failed", "user_id", userID, "error", err)
		return nil, err
	}

	po := &PaymentOrder{
		ID:        order.ID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Purpose:   purpose,
		Status:    OrderStatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertOrder(ctx, po); err != nil {
		return nil, err
	}

	s.logger.Info("payment order created",
		"user_id", userID, "order_id", order.ID, "amount", amount, "currency", currency)

	return &CreateOrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// SettleRequest carries a settlement proof from the client.
type SettleRequest struct {
	UserID    string
	OrderID   string
	PaymentID string
	Signature string
	Amount    float64
}

// SettleResult reports the outcome of a settlement.
type SettleResult struct {
	NewBalance       float64
	TransactionID    string
	AlreadyProcessed bool
}

// SettlePayment credits the wallet for a verified gateway payment, exactly
// once per order:
//
//  1. If the order already settled, return the current balance and the
//     original transaction id. Success with no mutation.
//  2. Verify the gateway signature; nothing is mutated on failure.
//  3. In one storage transaction: re-check the order under lock, credit the
//     balance atomically, mark the order completed, append the credit record
//     with the exact post-increment balance.
func (s *Service) SettlePayment(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %.2f", req.Amount)
	}

	// Cheap idempotency check before any crypto. The authoritative check
	// happens again under the row lock below.
	done, err := s.store.IsCompleted(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if done {
		return s.alreadyProcessed(ctx, req)
	}

	if err := s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		s.logger.Warn("settlement signature rejected",
			"user_id", req.UserID, "order_id", req.OrderID, "payment_id", req.PaymentID)
		return nil, err
	}

	var result SettleResult
	err = s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}

		if order.Status == OrderStatusCompleted {
			// Lost the race against a concurrent duplicate; report its outcome.
			balance, err := tx.Balance(ctx, req.UserID)
			if err != nil {
				return err
			}
			txn, err := tx.TransactionByOrder(ctx, req.OrderID)
			if err != nil {
				return err
			}
			result = SettleResult{NewBalance: balance, AlreadyProcessed: true}
			if txn != nil {
				result.TransactionID = txn.ID
			}
			return nil
		}

		newBalance, err := tx.Credit(ctx, req.UserID, req.Amount)
		if err != nil {
			return err
		}

		if err := tx.CompleteOrder(ctx, req.OrderID, req.PaymentID); err != nil {
			return err
		}

		txn := &Transaction{
			ID:           uuid.NewString(),
			UserID:       req.UserID,
			Type:         TypeCredit,
			Amount:       req.Amount,
			BalanceAfter: newBalance,
			Description:  "Wallet top-up via payment gateway",
			OrderID:      req.OrderID,
			PaymentID:    req.PaymentID,
			Status:       "completed",
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}

		result = SettleResult{NewBalance: newBalance, TransactionID: txn.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyProcessed {
		s.logger.Info("payment settled",
			"user_id", req.UserID, "order_id", req.OrderID,
			"amount", req.Amount, "new_balance", result.NewBalance)
		s.publish("wallet.credited", walletEvent{
			UserID:        req.UserID,
			Type:          TypeCredit,
			Amount:        req.Amount,
			BalanceAfter:  result.NewBalance,
			TransactionID: result.TransactionID,
			OrderID:       req.OrderID,
			At:            time.Now().UTC(),
		})
	}

	return &result, nil
}

// alreadyProcessed builds the duplicate-settlement response without mutating
// anything.
func (s *Service) alreadyProcessed(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	balance, err := s.store.Balance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	result := &SettleResult{NewBalance: balance, AlreadyProcessed: true}
	err = s.store.InTx(ctx, func(tx Tx) error {
		txn, err := tx.TransactionByOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if txn != nil {
			result.TransactionID = txn.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("duplicate settlement ignored", "user_id", req.UserID, "order_id", req.OrderID)
	return result, nil
}

// DeductRequest debits a wallet to pay for a booking.
type DeductRequest struct {
	UserID      string
	Amount      float64
	BookingID   string
	BookingType string
	Description string
}

// DeductResult reports a successful debit.
type DeductResult struct {
	NewBalance    float64
	TransactionID string
}

// Deduct debits the wallet and marks the linked booking paid, in one storage
// transaction. Returns InsufficientBalanceError with the shortfall when funds
// are short; the balance is untouched in that case.
func (s *Service) Deduct(ctx context.Context, req DeductRequest) (*DeductResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %.2f", req.Amount)
	}

	var result DeductResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		newBalance, err := tx.Debit(ctx, req.UserID, req.Amount)
		if err != nil {
			return err
		}

		if req.BookingID != "" {
			if err := tx.MarkBookingPaid(ctx, req.BookingType, req.BookingID); err != nil {
				return err
			}
		}

		txn := &Transaction{
			ID:           uuid.NewString(),
			UserID:       req.UserID,
			Type:         TypeDebit,
			Amount:       req.Amount,
			BalanceAfter: newBalance,
			Description:  req.Description,
			BookingID:    req.BookingID,
			BookingType:  req.BookingType,
			Status:       "completed",
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}

		result = DeductResult{NewBalance: newBalance, TransactionID: txn.ID}
		return nil
	})
	if err != nil {
		var insufficient *InsufficientBalanceError
		if errors.As(err, &insufficient) {
			s.logger.Info("debit rejected: insufficient balance",
				"user_id", req.UserID, "amount", req.Amount, "shortfall", insufficient.Shortfall())
		}
		return nil, err
	}

	s.logger.Info("wallet debited",
		"user_id", req.UserID, "amount", req.Amount,
		"booking_id", req.BookingID, "new_balance", result.NewBalance)
	s.publish("wallet.debited", walletEvent{
		UserID:        req.UserID,
		Type:          TypeDebit,
		Amount:        req.Amount,
		BalanceAfter:  result.NewBalance,
		TransactionID: result.TransactionID,
		BookingID:     req.BookingID,
		At:            time.Now().UTC(),
	})

	return &result, nil
}

// ManualAdjust applies an operator-initiated credit or debit. It skips
// gateway verification and order tracking since the input comes from an
// authenticated operator, but still records a transaction and, for debits,
// honors the non-negative balance invariant.
func (s *Service) ManualAdjust(ctx context.Context, userID string, amount float64, direction, reason string) (*DeductResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	if direction != TypeCredit && direction != TypeDebit {
		return nil, fmt.Errorf("direction must be credit or debit, got %q", direction)
	}

	var result DeductResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		var newBalance float64
		var err error
		if direction == TypeCredit {
			newBalance, err = tx.Credit(ctx, userID, amount)
		} else {
			newBalance, err = tx.Debit(ctx, userID, amount)
		}
		if err != nil {
			return err
		}

		txn := &Transaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         direction,
			Amount:       amount,
			BalanceAfter: newBalance,
			Description:  "Manual adjustment: " + reason,
			Status:       "completed",
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.AppendTransaction(ctx, txn); err != nil {
			return err
		}

		result = DeductResult{NewBalance: newBalance, TransactionID: txn.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manual wallet adjustment",
		"user_id", userID, "direction", direction, "amount", amount, "reason", reason)
	s.publish("wallet."+direction+"ed", walletEvent{
		UserID:        userID,
		Type:          direction,
		Amount:        amount,
		BalanceAfter:  result.NewBalance,
		TransactionID: result.TransactionID,
		At:            time.Now().UTC(),
	})

	return &result, nil
}

// Balance returns the current balance for userID.
func (s *Service) Balance(ctx context.Context, userID string) (float64, error) {
	return s.store.Balance(ctx, userID)
}

// Transactions returns the newest transactions for userID.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	return s.store.Transactions(ctx, userID, limit)
}

// ReplayBalance recomputes the balance from the transaction history.
func (s *Service) ReplayBalance(ctx context.Context, userID string) (float64, error) {
	return s.store.ReplayBalance(ctx, userID)
}

type walletEvent struct {
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	BalanceAfter  float64   `json:"balance_after"`
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id,omitempty"`
	BookingID     string    `json:"booking_id,omitempty"`
	At            time.Time `json:"at"`
}

func (s *Service) publish(subject string, ev walletEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(subject, ev)
}
