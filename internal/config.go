package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Env      string
	LogLevel string
	Port     uint16
	BaseURL  string

	// DatabaseURL points at the staging database for pending-order
	// descriptors. When empty, descriptors are staged in memory.
	DatabaseURL string

	// CORSOrigins are the storefront origins allowed to call this API.
	CORSOrigins []string

	Services ServicesConfig
	Stripe   StripeConfig
	Auth     AuthConfig
	Events   EventsConfig
}

// ServicesConfig holds the base URLs of the REST collaborators.
type ServicesConfig struct {
	CartURL     string
	WishlistURL string
	OrderURL    string
	ProductURL  string
	ReviewURL   string
}

// StripeConfig holds keys for the external payment collaborator.
type StripeConfig struct {
	SecretKey string

	// SuccessURL and CancelURL are where the hosted payment page sends the
	// customer back. SuccessURL is the confirmation route that triggers
	// order completion.
	SuccessURL string
	CancelURL  string
}

// AuthConfig holds settings for verifying externally issued session tokens.
// Token issuance is delegated to the auth collaborator; this service only
// parses and verifies.
type AuthConfig struct {
	JWTSecret string
}

// EventsConfig holds NATS settings for order lifecycle events.
type EventsConfig struct {
	// URL of the NATS server. When empty, event publishing is disabled.
	URL string

	// SubjectPrefix namespaces published subjects, e.g. "njord.order.created".
	SubjectPrefix string
}

// NewConfig loads configuration from .env (if present) and the environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Walk up directories to find .env (max 2 parent directories)
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvInt("PORT", 3000),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
		Services: ServicesConfig{
			CartURL:     getEnv("CART_SERVICE_URL", "http://localhost:3030/ecom/cart"),
			WishlistURL: getEnv("WISHLIST_SERVICE_URL", "http://localhost:3030/ecom/wishlist"),
			OrderURL:    getEnv("ORDER_SERVICE_URL", "http://localhost:3030/ecom/order"),
			ProductURL:  getEnv("PRODUCT_SERVICE_URL", "http://localhost:3030/ecom/product"),
			ReviewURL:   getEnv("REVIEW_SERVICE_URL", "http://localhost:3030/ecom/review"),
		},
		Stripe: StripeConfig{
			SecretKey:  getEnv("STRIPE_SECRET_KEY", "sk_test_your_key_here"),
			SuccessURL: getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/checkout/success"),
			CancelURL:  getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/checkout"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		},
		Events: EventsConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "njord"),
		},
	}

	// Validate env
	if cfg.Env != "dev" && cfg.Env != "prod" {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Env == "prod" && cfg.Auth.JWTSecret == "dev-secret-change-in-production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback uint16) uint16 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		slog.Default().Warn("Invalid integer env value", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return uint16(n)
}
