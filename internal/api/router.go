package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Durgesh2022/yoga-app/internal/admin"
	"github.com/Durgesh2022/yoga-app/internal/booking"
	"github.com/Durgesh2022/yoga-app/internal/security"
	"github.com/Durgesh2022/yoga-app/internal/status"
	"github.com/Durgesh2022/yoga-app/internal/user"
	"github.com/Durgesh2022/yoga-app/internal/wallet"
)

// Dependencies carries everything the router needs. Handlers depend on the
// narrow interfaces declared here, so tests plug in fakes per concern.
type Dependencies struct {
	Logger *slog.Logger

	Users interface {
		Signup(ctx context.Context, req user.SignupRequest) (*user.Profile, error)
		Login(ctx context.Context, email, password string) (*user.Profile, error)
		Get(ctx context.Context, id string) (*user.Profile, error)
	}

	Bookings interface {
		CreateBooking(ctx context.Context, b *booking.Booking) (*booking.Booking, error)
		GetBooking(ctx context.Context, id string) (*booking.Booking, error)
		ListUserBookings(ctx context.Context, userID string) ([]*booking.Booking, error)
		CreateYogaClassBooking(ctx context.Context, b *booking.YogaClassBooking) (*booking.YogaClassBooking, error)
		CreateYogaPackagePurchase(ctx context.Context, p *booking.YogaPackagePurchase) (*booking.YogaPackagePurchase, error)
		CreateYogaConsultation(ctx context.Context, c *booking.YogaConsultation) (*booking.YogaConsultation, error)
		ListUserYogaActivity(ctx context.Context, userID string) (*booking.YogaActivity, error)
	}

	Wallet interface {
		CreateOrder(ctx context.Context, userID string, amount float64, currency, purpose string) (*wallet.CreateOrderResult, error)
		SettlePayment(ctx context.Context, req wallet.SettleRequest) (*wallet.SettleResult, error)
		Deduct(ctx context.Context, req wallet.DeductRequest) (*wallet.DeductResult, error)
		ManualAdjust(ctx context.Context, userID string, amount float64, direction, reason string) (*wallet.DeductResult, error)
		Balance(ctx context.Context, userID string) (float64, error)
		Transactions(ctx context.Context, userID string, limit int) ([]*wallet.Transaction, error)
	}

	Admin interface {
		DashboardStats(ctx context.Context) (*admin.Stats, error)
		CreateAstrologer(ctx context.Context, a *admin.Astrologer) (*admin.Astrologer, error)
		UpdateAstrologer(ctx context.Context, a *admin.Astrologer) (*admin.Astrologer, error)
		DeleteAstrologer(ctx context.Context, id string) error
		ListAstrologers(ctx context.Context) ([]*admin.Astrologer, error)
		PurgeUser(ctx context.Context, userID string) error
		LedgerConsistency(ctx context.Context) (*admin.ConsistencyReport, error)
	}
	AdminAuth *admin.Authenticator

	StatusChecks interface {
		Insert(ctx context.Context, clientName string) (*status.Check, error)
		List(ctx context.Context, limit int) ([]*status.Check, error)
	}

	Auditor      Auditor
	RateLimiter  *security.RedisTokenBucket
	MaxBodyBytes int64
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	createOrderV, err := security.NewJSONSchemaValidator(createOrderSchema)
	if err != nil {
		return nil, err
	}
	verifyV, err := security.NewJSONSchemaValidator(verifyPaymentSchema)
	if err != nil {
		return nil, err
	}
	deductV, err := security.NewJSONSchemaValidator(deductSchema)
	if err != nil {
		return nil, err
	}
	manualV, err := security.NewJSONSchemaValidator(manualAdjustSchema)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", security.CorrelationIDHeader},
	}))
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	if deps.Auditor != nil {
		r.Use(AuditMiddleware(deps.Auditor))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", handleBanner())

		r.Post("/status", handleCreateStatusCheck(deps))
		r.Get("/status", handleListStatusChecks(deps))

		r.Post("/auth/signup", handleSignup(deps))
		r.Post("/auth/login", handleLogin(deps))
		r.Get("/users/{user_id}", handleGetUser(deps))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", handleCreateBooking(deps))
			r.Get("/user/{user_id}", handleListUserBookings(deps))
			r.Get("/{booking_id}", handleGetBooking(deps))
		})

		r.Route("/yoga", func(r chi.Router) {
			r.Post("/class-booking", handleYogaClassBooking(deps))
			r.Post("/package-purchase", handleYogaPackagePurchase(deps))
			r.Post("/consultation", handleYogaConsultation(deps))
			r.Get("/user/{user_id}/bookings", handleYogaActivity(deps))
		})

		r.Route("/payment", func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(security.RateLimitMiddleware(deps.RateLimiter, rateLimitKeyByIP))
			}
			r.With(createOrderV.Middleware).Post("/create-order", handleCreateOrder(deps))
			r.With(verifyV.Middleware).Post("/verify", handleVerifyPayment(deps))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.With(deductV.Middleware).Post("/deduct", handleDeduct(deps))
			r.Get("/{user_id}", handleWalletBalance(deps))
			r.Get("/{user_id}/transactions", handleWalletTransactions(deps))

			r.Group(func(r chi.Router) {
				r.Use(deps.AdminAuth.RequireOperator)
				r.With(manualV.Middleware).Post("/manual-add", handleManualAdjust(deps, wallet.TypeCredit))
				r.With(manualV.Middleware).Post("/manual-deduct", handleManualAdjust(deps, wallet.TypeDebit))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handleAdminLogin(deps))

			r.Group(func(r chi.Router) {
				r.Use(deps.AdminAuth.RequireOperator)
				r.Get("/stats", handleAdminStats(deps))
				r.Get("/ledger/consistency", handleLedgerConsistency(deps))
				r.Delete("/users/{user_id}", handlePurgeUser(deps))

				r.Route("/astrologers", func(r chi.Router) {
					r.Get("/", handleListAstrologers(deps))
					r.Post("/", handleCreateAstrologer(deps))
					r.Put("/{astrologer_id}", handleUpdateAstrologer(deps))
					r.Delete("/{astrologer_id}", handleDeleteAstrologer(deps))
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}

func rateLimitKeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	return "ip:" + host
}
