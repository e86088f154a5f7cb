package admin

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator credentials")
	ErrAstrologerNotFound = errors.New("astrologer not found")
)

// Astrologer is a roster entry managed by operators.
type Astrologer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Expertise       string    `json:"expertise,omitempty"`
	Experience      string    `json:"experience,omitempty"`
	Languages       string    `json:"languages,omitempty"`
	PricePerSession float64   `json:"price_per_session"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stats is the operator dashboard snapshot.
type Stats struct {
	TotalUsers         int64   `json:"total_users"`
	TotalBookings      int64   `json:"total_bookings"`
	YogaClassBookings  int64   `json:"yoga_class_bookings"`
	YogaPackages       int64   `json:"yoga_package_purchases"`
	YogaConsultations  int64   `json:"yoga_consultations"`
	PaymentOrders      int64   `json:"payment_orders"`
	CompletedOrders    int64   `json:"completed_orders"`
	CreditVolume       float64 `json:"credit_volume"`
	DebitVolume        float64 `json:"debit_volume"`
	WalletBalanceTotal float64 `json:"wallet_balance_total"`
}

// Mismatch is one account whose stored balance diverges from a replay of its
// transaction history.
type Mismatch struct {
	UserID   string  `json:"user_id"`
	Stored   float64 `json:"stored_balance"`
	Replayed float64 `json:"replayed_balance"`
}

// ConsistencyReport is the outcome of the ledger invariant sweep.
type ConsistencyReport struct {
	CheckedAccounts int64      `json:"checked_accounts"`
	Consistent      bool       `json:"consistent"`
	Mismatches      []Mismatch `json:"mismatches"`
}
