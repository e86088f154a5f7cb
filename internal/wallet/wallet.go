package wallet

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Order lifecycle. An order never transitions backward.
const (
	OrderStatusCreated   = "created"
	OrderStatusCompleted = "completed"
)

// Transaction directions.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

var (
	// ErrAccountNotFound is returned when a user id does not resolve.
	ErrAccountNotFound = errors.New("account not found")

	// ErrOrderNotFound is returned when a payment order id does not resolve.
	ErrOrderNotFound = errors.New("payment order not found")
)

// InsufficientBalanceError reports a debit that exceeds the available balance.
// No mutation occurs when it is returned.
type InsufficientBalanceError struct {
	Balance   float64
	Requested float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %.2f, need %.2f", e.Balance, e.Requested)
}

// Shortfall is the amount the user must add before the debit can succeed.
func (e *InsufficientBalanceError) Shortfall() float64 {
	return e.Requested - e.Balance
}

// PaymentOrder records a gateway order request and its terminal state.
type PaymentOrder struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Purpose     string     `json:"purpose"`
	Status      string     `json:"status"`
	PaymentID   string     `json:"payment_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Transaction is an append-only ledger record. BalanceAfter is the balance
// snapshot taken immediately after this transaction applied; it is stored,
// not recomputed.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balance_after"`
	Description  string    `json:"description"`
	OrderID      string    `json:"order_id,omitempty"`
	PaymentID    string    `json:"payment_id,omitempty"`
	BookingID    string    `json:"booking_id,omitempty"`
	BookingType  string    `json:"booking_type,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinorUnits converts a currency amount to integer minor units (paise for
// INR), which is what the gateway expects.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
