package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DBUrl       string        `envconfig:"DB_URL" required:"true"`
	DBMaxConns  int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	AppEnv      string        `envconfig:"APP_ENV" default:"production"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins string        `envconfig:"CORS_ORIGINS" default:"*"`

	BackendURL       string `envconfig:"BACKEND_URL"`
	GoogleMapsAPIKey string `envconfig:"GOOGLE_MAPS_API_KEY"`
	EmergentAuthURL  string `envconfig:"EMERGENT_AUTH_URL" default:"https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"`

	StripeAPIKey           string        `envconfig:"STRIPE_API_KEY"`
	StripeWebhookSecret    string        `envconfig:"STRIPE_WEBHOOK_SECRET"`
	PaymentCurrency        string        `envconfig:"PAYMENT_CURRENCY" default:"eur"`
	PaymentProviderTimeout time.Duration `envconfig:"PAYMENT_PROVIDER_TIMEOUT" default:"15s"`
	CheckoutSuccessPath    string        `envconfig:"CHECKOUT_SUCCESS_PATH" default:"/pago-exitoso"`
	CheckoutCancelPath     string        `envconfig:"CHECKOUT_CANCEL_PATH" default:"/reservar"`

	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseBucket     string `envconfig:"SUPABASE_BUCKET"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"paseos.events"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.DBUrl) == "" {
		return nil, errors.New("DB_URL is required")
	}

	cfg.AppEnv = normalizeEnv(cfg.AppEnv)
	cfg.PaymentCurrency = strings.ToLower(strings.TrimSpace(cfg.PaymentCurrency))
	return &cfg, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func (c *Config) PaymentsEnabled() bool {
	return c != nil && c.StripeAPIKey != ""
}

func (c *Config) StorageEnabled() bool {
	return c != nil && c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}

func (c *Config) EventsEnabled() bool {
	return c != nil && c.AMQPURL != ""
}

func (c *Config) TracingEnabled() bool {
	return c != nil && c.OTLPEndpoint != ""
}

// AllowCredentials is only safe when origins are an explicit list.
func (c *Config) AllowCredentials() bool {
	return c != nil && strings.TrimSpace(c.CORSOrigins) != "*" && strings.TrimSpace(c.CORSOrigins) != ""
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
