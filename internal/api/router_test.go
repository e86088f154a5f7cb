package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Durgesh2022/yoga-app/internal/admin"
	"github.com/Durgesh2022/yoga-app/internal/booking"
	"github.com/Durgesh2022/yoga-app/internal/gateway"
	"github.com/Durgesh2022/yoga-app/internal/security"
	"github.com/Durgesh2022/yoga-app/internal/status"
	"github.com/Durgesh2022/yoga-app/internal/user"
	"github.com/Durgesh2022/yoga-app/internal/wallet"
)

type fakeUsers struct {
	profiles map[string]*user.Profile
}

func (f *fakeUsers) Signup(ctx context.Context, req user.SignupRequest) (*user.Profile, error) {
	if req.Email == "taken@example.com" {
		return nil, user.ErrEmailTaken
	}
	p := &user.Profile{ID: "u-new", FullName: req.FullName, Email: req.Email, Phone: req.Phone}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*user.Profile, error) {
	if password != "correct-password" {
		return nil, user.ErrInvalidCredentials
	}
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, user.ErrInvalidCredentials
}

func (f *fakeUsers) Get(ctx context.Context, id string) (*user.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return p, nil
}

type fakeBookings struct {
	byID map[string]*booking.Booking
}

func (f *fakeBookings) CreateBooking(ctx context.Context, b *booking.Booking) (*booking.Booking, error) {
	if b.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	b.ID = "b1"
	b.Status = booking.StatusPending
	f.byID[b.ID] = b
	return b, nil
}

func (f *fakeBookings) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) ListUserBookings(ctx context.Context, userID string) ([]*booking.Booking, error) {
	out := []*booking.Booking{}
	for _, b := range f.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) CreateYogaClassBooking(ctx context.Context, b *booking.YogaClassBooking) (*booking.YogaClassBooking, error) {
	b.ID = "yc1"
	b.Status = booking.StatusPending
	return b, nil
}

func (f *fakeBookings) CreateYogaPackagePurchase(ctx context.Context, p *booking.YogaPackagePurchase) (*booking.YogaPackagePurchase, error) {
	p.ID = "yp1"
	p.Status = booking.StatusPending
	return p, nil
}

func (f *fakeBookings) CreateYogaConsultation(ctx context.Context, c *booking.YogaConsultation) (*booking.YogaConsultation, error) {
	c.ID = "yo1"
	c.Status = booking.StatusPending
	return c, nil
}

func (f *fakeBookings) ListUserYogaActivity(ctx context.Context, userID string) (*booking.YogaActivity, error) {
	return &booking.YogaActivity{
		ClassBookings: []*booking.YogaClassBooking{},
		Packages:      []*booking.YogaPackagePurchase{},
		Consultations: []*booking.YogaConsultation{},
	}, nil
}

type fakeWallet struct {
	balances  map[string]float64
	settleErr error
	settled   map[string]bool
}

func (f *fakeWallet) CreateOrder(ctx context.Context, userID string, amount float64, currency, purpose string) (*wallet.CreateOrderResult, error) {
	if _, ok := f.balances[userID]; !ok {
		return nil, wallet.ErrAccountNotFound
	}
	if currency == "" {
		currency = "INR"
	}
	return &wallet.CreateOrderResult{
		OrderID:  "order_fake1",
		Amount:   wallet.MinorUnits(amount),
		Currency: currency,
		KeyID:    "rzp_test_key",
	}, nil
}

func (f *fakeWallet) SettlePayment(ctx context.Context, req wallet.SettleRequest) (*wallet.SettleResult, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	already := f.settled[req.OrderID]
	if !already {
		f.settled[req.OrderID] = true
		f.balances[req.UserID] += req.Amount
	}
	return &wallet.SettleResult{
		NewBalance:       f.balances[req.UserID],
		TransactionID:    "txn1",
		AlreadyProcessed: already,
	}, nil
}

func (f *fakeWallet) Deduct(ctx context.Context, req wallet.DeductRequest) (*wallet.DeductResult, error) {
	balance, ok := f.balances[req.UserID]
	if !ok {
		return nil, wallet.ErrAccountNotFound
	}
	if balance < req.Amount {
		return nil, &wallet.InsufficientBalanceError{Balance: balance, Requested: req.Amount}
	}
	f.balances[req.UserID] = balance - req.Amount
	return &wallet.DeductResult{NewBalance: f.balances[req.UserID], TransactionID: "txn2"}, nil
}

func (f *fakeWallet) ManualAdjust(ctx context.Context, userID string, amount float64, direction, reason string) (*wallet.DeductResult, error) {
	if direction == wallet.TypeCredit {
		f.balances[userID] += amount
	} else {
		f.balances[userID] -= amount
	}
	return &wallet.DeductResult{NewBalance: f.balances[userID], TransactionID: "txn3"}, nil
}

func (f *fakeWallet) Balance(ctx context.Context, userID string) (float64, error) {
	b, ok := f.balances[userID]
	if !ok {
		return 0, wallet.ErrAccountNotFound
	}
	return b, nil
}

func (f *fakeWallet) Transactions(ctx context.Context, userID string, limit int) ([]*wallet.Transaction, error) {
	return []*wallet.Transaction{}, nil
}

type fakeAdmin struct{}

func (fakeAdmin) DashboardStats(ctx context.Context) (*admin.Stats, error) {
	return &admin.Stats{TotalUsers: 3}, nil
}

func (fakeAdmin) CreateAstrologer(ctx context.Context, a *admin.Astrologer) (*admin.Astrologer, error) {
	a.ID = "astro1"
	return a, nil
}

func (fakeAdmin) UpdateAstrologer(ctx context.Context, a *admin.Astrologer) (*admin.Astrologer, error) {
	return a, nil
}

func (fakeAdmin) DeleteAstrologer(ctx context.Context, id string) error { return nil }

func (fakeAdmin) ListAstrologers(ctx context.Context) ([]*admin.Astrologer, error) {
	return []*admin.Astrologer{}, nil
}

func (fakeAdmin) PurgeUser(ctx context.Context, userID string) error { return nil }

func (fakeAdmin) LedgerConsistency(ctx context.Context) (*admin.ConsistencyReport, error) {
	return &admin.ConsistencyReport{Consistent: true, Mismatches: []admin.Mismatch{}}, nil
}

type fakeStatusChecks struct{}

func (fakeStatusChecks) Insert(ctx context.Context, clientName string) (*status.Check, error) {
	return &status.Check{ID: "sc1", ClientName: clientName}, nil
}

func (fakeStatusChecks) List(ctx context.Context, limit int) ([]*status.Check, error) {
	return []*status.Check{}, nil
}

func testDeps(t *testing.T) (Dependencies, *fakeWallet) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("op-password"), bcrypt.MinCost)
	require.NoError(t, err)

	fw := &fakeWallet{
		balances: map[string]float64{"u1": 100},
		settled:  map[string]bool{},
	}
	deps := Dependencies{
		Users: &fakeUsers{profiles: map[string]*user.Profile{
			"u1": {ID: "u1", FullName: "Asha", Email: "asha@example.com"},
		}},
		Bookings:     &fakeBookings{byID: map[string]*booking.Booking{}},
		Wallet:       fw,
		Admin:        fakeAdmin{},
		AdminAuth:    admin.NewAuthenticator("ops@example.com", string(hash), "test-secret"),
		StatusChecks: fakeStatusChecks{},
		MaxBodyBytes: 1 << 20,
	}
	return deps, fw
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:52000"
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestHealthz(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, _ := doJSON(t, router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBannerAndCorrelationID(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodGet, "/api/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Celestials Healing API", body["message"])
	assert.NotEmpty(t, rec.Header().Get(security.CorrelationIDHeader))

	// A caller-supplied correlation id is echoed back.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/", nil,
		map[string]string{security.CorrelationIDHeader: "cid-123"})
	assert.Equal(t, "cid-123", rec.Header().Get(security.CorrelationIDHeader))
}

func TestSignupLoginAndProfile(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]any{
		"full_name": "New User", "email": "new@example.com",
		"phone": "9999999999", "password": "longenough",
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]any{
		"full_name": "Dup", "email": "taken@example.com",
		"phone": "8888888888", "password": "longenough",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "asha@example.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/users/u1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha@example.com", body["email"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/users/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodPost, "/api/payment/create-order", map[string]any{
		"user_id": "u1", "amount": 200.0,
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order_fake1", body["order_id"])
	assert.Equal(t, float64(20000), body["amount"])
	assert.Equal(t, "rzp_test_key", body["key_id"])

	// Schema rejects a missing amount before the handler runs.
	rec, body = doJSON(t, router, http.MethodPost, "/api/payment/create-order", map[string]any{
		"user_id": "u1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["error"])

	rec, _ = doJSON(t, router, http.MethodPost, "/api/payment/create-order", map[string]any{
		"user_id": "ghost", "amount": 50.0,
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	deps, fw := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	payload := map[string]any{
		"user_id": "u1", "order_id": "order_fake1", "payment_id": "pay_1",
		"signature": "sig", "amount": 200.0,
	}

	rec, body := doJSON(t, router, http.MethodPost, "/api/payment/verify", payload, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(300), body["new_balance"])
	assert.Equal(t, false, body["already_processed"])

	// Resubmission reports the no-op.
	rec, body = doJSON(t, router, http.MethodPost, "/api/payment/verify", payload, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["already_processed"])
	assert.Equal(t, float64(300), body["new_balance"])

	// A tampered signature maps to 400 invalid_signature.
	fw.settleErr = gateway.ErrSignatureMismatch
	rec, body = doJSON(t, router, http.MethodPost, "/api/payment/verify", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_signature", body["error"])
}

func TestDeductEndpoint(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodPost, "/api/wallet/deduct", map[string]any{
		"user_id": "u1", "amount": 40.0, "description": "astrology session",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(60), body["new_balance"])

	rec, body = doJSON(t, router, http.MethodPost, "/api/wallet/deduct", map[string]any{
		"user_id": "u1", "amount": 100.0,
	}, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_balance", body["error"])
	assert.Equal(t, float64(40), body["shortfall"])
	assert.Equal(t, false, body["success"])
}

func TestWalletBalanceAndTransactions(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodGet, "/api/wallet/u1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(100), body["balance"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/wallet/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = doJSON(t, router, http.MethodGet, "/api/wallet/u1/transactions?limit=5", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["transactions"])
}

func TestBookingEndpoints(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodPost, "/api/bookings/", map[string]any{
		"user_id": "u1", "astrologer_id": "a1", "astrologer_name": "Pt. Sharma",
		"service_name": "Kundali Reading", "service_price": 499.0,
		"booking_date": "2026-09-01", "booking_time": "10:30",
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = doJSON(t, router, http.MethodGet, "/api/bookings/b1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/bookings/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/yoga/user/u1/bookings", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireOperator(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := doJSON(t, router, http.MethodPost, "/api/admin/login", map[string]any{
		"email": "ops@example.com", "password": "op-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	auth := map[string]string{"Authorization": "Bearer " + token}

	rec, body = doJSON(t, router, http.MethodGet, "/api/admin/stats", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["total_users"])

	rec, body = doJSON(t, router, http.MethodGet, "/api/admin/ledger/consistency", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["consistent"])

	// Manual adjustments sit behind the same guard.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/wallet/manual-add", map[string]any{
		"user_id": "u1", "amount": 10.0, "reason": "goodwill",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = doJSON(t, router, http.MethodPost, "/api/wallet/manual-add", map[string]any{
		"user_id": "u1", "amount": 10.0, "reason": "goodwill",
	}, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(110), body["new_balance"])
}

func TestPaymentRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	deps, _ := testDeps(t)
	deps.RateLimiter = &security.RedisTokenBucket{
		Redis:      client,
		Prefix:     "rl",
		Capacity:   1,
		RefillRate: 0.001,
	}
	router, err := NewRouter(deps)
	require.NoError(t, err)

	payload := map[string]any{"user_id": "u1", "amount": 10.0}

	rec, _ := doJSON(t, router, http.MethodPost, "/api/payment/create-order", payload, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, router, http.MethodPost, "/api/payment/create-order", payload, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", body["error"])

	// Non-payment routes are not limited.
	rec, _ = doJSON(t, router, http.MethodGet, "/api/wallet/u1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBodySizeLimit(t *testing.T) {
	deps, _ := testDeps(t)
	deps.MaxBodyBytes = 64
	router, err := NewRouter(deps)
	require.NoError(t, err)

	big := map[string]any{
		"user_id": "u1", "amount": 10.0,
		"purpose": strings.Repeat("x", 200),
	}
	rec, body := doJSON(t, router, http.MethodPost, "/api/payment/create-order", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "payload_too_large", body["error"])
}

func TestUnknownRoute(t *testing.T) {
	deps, _ := testDeps(t)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	rec, body := doJSON(t, router, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}
