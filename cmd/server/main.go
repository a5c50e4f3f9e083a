package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rowanvale/njord/internal"
	"github.com/rowanvale/njord/internal/billing"
	"github.com/rowanvale/njord/internal/client"
	"github.com/rowanvale/njord/internal/events"
	"github.com/rowanvale/njord/internal/handler"
	"github.com/rowanvale/njord/internal/middleware"
	"github.com/rowanvale/njord/internal/router"
	"github.com/rowanvale/njord/internal/routes"
	"github.com/rowanvale/njord/internal/service"
	"github.com/rowanvale/njord/internal/session"
	"github.com/rowanvale/njord/internal/staging"
	"github.com/rowanvale/njord/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Pending-order staging: postgres when a database is configured,
	// in-memory otherwise (single-instance dev setups).
	var stagingStore staging.Store
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to staging database...")
		sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		stagingStore = staging.NewPostgresStore(pool)
		logger.Info("Staging database ready")
	} else {
		logger.Warn("DATABASE_URL not set, staging pending orders in memory")
		stagingStore = staging.NewMemoryStore()
	}

	// Collaborator clients
	cartClient := client.NewCartClient(cfg.Services.CartURL, nil)
	wishlistClient := client.NewWishlistClient(cfg.Services.WishlistURL, nil)
	orderClient := client.NewOrderClient(cfg.Services.OrderURL, nil)
	productClient := client.NewProductClient(cfg.Services.ProductURL, nil)
	reviewClient := client.NewReviewClient(cfg.Services.ReviewURL, nil)

	// Workflow metrics
	metrics := telemetry.NewMetrics("njord")

	// Event publishing
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.URL != "" {
		publisher, err = events.NewNATSPublisher(cfg.Events.URL, cfg.Events.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		logger.Info("Connected to NATS", "url", cfg.Events.URL)
	} else {
		logger.Warn("NATS_URL not set, order events disabled")
	}
	defer publisher.Close()

	// Payment provider
	billingProvider := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)

	// Stores and workflows
	cartStore := service.NewCartStore(cartClient, logger, metrics)
	wishlistStore := service.NewWishlistStore(wishlistClient, cartStore, logger, metrics)
	catalog := service.NewCatalog(productClient)
	orderWorkflow := service.NewOrderWorkflow(
		orderClient,
		productClient,
		cartStore,
		cartClient,
		stagingStore,
		billingProvider,
		publisher,
		logger,
		metrics,
	)

	// HTTP plumbing
	verifier := session.NewVerifier(cfg.Auth.JWTSecret)
	httpMetrics := middleware.NewMetrics("njord")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		httpMetrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		router.Logger(logger),
		middleware.WithUser(verifier, logger),
	)

	routes.Register(r, routes.Deps{
		Products: handler.NewProductHandler(catalog),
		Session:  handler.NewSessionHandler(cartStore, wishlistStore),
		Cart:     handler.NewCartHandler(cartStore),
		Wishlist: handler.NewWishlistHandler(wishlistStore),
		Checkout: handler.NewCheckoutHandler(orderWorkflow),
		Orders:   handler.NewOrderHandler(orderWorkflow),
		Reviews:  handler.NewReviewHandler(reviewClient),
		Metrics:  httpMetrics,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
