package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/Durgesh2022/yoga-app/internal/admin"
	"github.com/Durgesh2022/yoga-app/internal/booking"
	"github.com/Durgesh2022/yoga-app/internal/gateway"
	"github.com/Durgesh2022/yoga-app/internal/security"
	"github.com/Durgesh2022/yoga-app/internal/user"
	"github.com/Durgesh2022/yoga-app/internal/wallet"
)

// writeDomainError maps service errors onto the HTTP error taxonomy.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *wallet.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		security.WriteJSONErrorExtra(w, r, http.StatusPaymentRequired, "insufficient_balance", map[string]any{
			"balance":   insufficient.Balance,
			"shortfall": insufficient.Shortfall(),
		})
	case errors.Is(err, gateway.ErrSignatureMismatch):
		writeError(w, r, http.StatusBadRequest, "invalid_signature")
	case errors.Is(err, gateway.ErrGateway):
		writeError(w, r, http.StatusBadGateway, "gateway_error")
	case errors.Is(err, wallet.ErrAccountNotFound), errors.Is(err, user.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user_not_found")
	case errors.Is(err, wallet.ErrOrderNotFound):
		writeError(w, r, http.StatusNotFound, "order_not_found")
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "booking_not_found")
	case errors.Is(err, admin.ErrAstrologerNotFound):
		writeError(w, r, http.StatusNotFound, "astrologer_not_found")
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, "email_taken")
	case errors.Is(err, user.ErrPhoneTaken):
		writeError(w, r, http.StatusConflict, "phone_taken")
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, admin.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, r, http.StatusNotFound, "not_found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error")
	}
}

type createOrderRequest struct {
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Purpose  string  `json:"purpose"`
}

func handleCreateOrder(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		res, err := deps.Wallet.CreateOrder(r.Context(), req.UserID, req.Amount, req.Currency, req.Purpose)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"order_id": res.OrderID,
			"amount":   res.Amount,
			"currency": res.Currency,
			"key_id":   res.KeyID,
		})
	}
}

type verifyPaymentRequest struct {
	UserID    string  `json:"user_id"`
	OrderID   string  `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Signature string  `json:"signature"`
	Amount    float64 `json:"amount"`
}

func handleVerifyPayment(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		res, err := deps.Wallet.SettlePayment(r.Context(), wallet.SettleRequest{
			UserID:    req.UserID,
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
			Amount:    req.Amount,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success":           true,
			"new_balance":       res.NewBalance,
			"transaction_id":    res.TransactionID,
			"already_processed": res.AlreadyProcessed,
		})
	}
}

type deductRequest struct {
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	BookingID   string  `json:"booking_id"`
	BookingType string  `json:"booking_type"`
	Description string  `json:"description"`
}

func handleDeduct(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		res, err := deps.Wallet.Deduct(r.Context(), wallet.DeductRequest{
			UserID:      req.UserID,
			Amount:      req.Amount,
			BookingID:   req.BookingID,
			BookingType: req.BookingType,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success":        true,
			"new_balance":    res.NewBalance,
			"transaction_id": res.TransactionID,
		})
	}
}

type manualAdjustRequest struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func handleManualAdjust(deps Dependencies, direction string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req manualAdjustRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		res, err := deps.Wallet.ManualAdjust(r.Context(), req.UserID, req.Amount, direction, req.Reason)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"success":        true,
			"new_balance":    res.NewBalance,
			"transaction_id": res.TransactionID,
		})
	}
}

func handleWalletBalance(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		balance, err := deps.Wallet.Balance(r.Context(), userID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"user_id": userID,
			"balance": balance,
		})
	}
}

func handleWalletTransactions(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				limit = i
			}
		}

		txns, err := deps.Wallet.Transactions(r.Context(), userID, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"user_id":      userID,
			"transactions": txns,
		})
	}
}
