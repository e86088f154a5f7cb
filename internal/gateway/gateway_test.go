package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	const secret = "test-secret"

	sig := SignPayment(secret, "order_1", "pay_1")

	require.NoError(t, VerifySignature(secret, "order_1", "pay_1", sig))

	// Tampered components must all fail.
	assert.ErrorIs(t, VerifySignature(secret, "order_2", "pay_1", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, "order_1", "pay_2", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, "order_1", "pay_1", sig+"00"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature("wrong-secret", "order_1", "pay_1", sig), ErrSignatureMismatch)

	// Empty inputs never verify.
	assert.ErrorIs(t, VerifySignature(secret, "", "pay_1", sig), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, "order_1", "pay_1", ""), ErrSignatureMismatch)
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key_id", user)
		require.Equal(t, "key_secret", pass)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(20000), req.Amount)
		require.Equal(t, "INR", req.Currency)

		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_abc123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_id", "key_secret")

	order, err := c.CreateOrder(context.Background(), 20000, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(20000), order.Amount)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"auth failed"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "creds")

	_, err := c.CreateOrder(context.Background(), 1000, "INR", "rcpt_2")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	c := NewClient("http://unused", "k", "s")

	_, err := c.CreateOrder(context.Background(), 0, "INR", "rcpt_3")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGateway)
}
