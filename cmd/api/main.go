package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/Durgesh2022/yoga-app/internal/admin"
	"github.com/Durgesh2022/yoga-app/internal/api"
	"github.com/Durgesh2022/yoga-app/internal/booking"
	"github.com/Durgesh2022/yoga-app/internal/config"
	"github.com/Durgesh2022/yoga-app/internal/events"
	"github.com/Durgesh2022/yoga-app/internal/gateway"
	"github.com/Durgesh2022/yoga-app/internal/platform"
	"github.com/Durgesh2022/yoga-app/internal/security"
	"github.com/Durgesh2022/yoga-app/internal/status"
	"github.com/Durgesh2022/yoga-app/internal/user"
	"github.com/Durgesh2022/yoga-app/internal/wallet"
	"github.com/Durgesh2022/yoga-app/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := platform.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := platform.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var rateLimiter *security.RedisTokenBucket
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		rateLimiter = &security.RedisTokenBucket{
			Redis:      redisClient,
			Prefix:     "payments_api",
			Capacity:   cfg.RateLimitCapacity,
			RefillRate: cfg.RateLimitRefillPerSec,
		}
	}

	chain, err := audit.OpenChainLog(cfg.AuditDBPath)
	if err != nil {
		logger.Error("failed to open audit chain", "error", err)
		os.Exit(1)
	}
	defer chain.Close()

	var publisher *events.Publisher
	var worker *events.AuditWorker
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("celestials-api"))
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer nc.Close()

		publisher = events.NewPublisher(nc, logger)
		worker = events.NewAuditWorker(nc, chain, logger)
		if err := worker.Start(ctx); err != nil {
			logger.Error("failed to start audit worker", "error", err)
			os.Exit(1)
		}
		defer worker.Stop()
	}

	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)

	walletSvc := wallet.NewService(wallet.NewStore(pool), gatewayClient, publisher, logger)
	userSvc := user.NewService(user.NewStore(pool), logger)
	bookingSvc := booking.NewService(booking.NewStore(pool), logger)
	adminSvc := admin.NewService(admin.NewStore(pool), logger)
	adminAuth := admin.NewAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AdminJWTSecret)

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Users:        userSvc,
		Bookings:     bookingSvc,
		Wallet:       walletSvc,
		Admin:        adminSvc,
		AdminAuth:    adminAuth,
		StatusChecks: status.NewStore(pool),
		Auditor:      chain,
		RateLimiter:  rateLimiter,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("celestials api listening", "addr", cfg.HTTPAddr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
