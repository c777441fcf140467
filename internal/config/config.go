package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Telemetry TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Store     StoreConfig
	Stripe    StripeConfig
	Email     EmailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Admin     AdminConfig
	Push      MetricsPushConfig

	// ConfirmationSweepInterval is how often the monolith re-sends unsent
	// confirmations. Zero disables the in-process loop.
	ConfirmationSweepInterval time.Duration
}

// TelemetryConfig carries log and OpenTelemetry settings. ServiceName falls
// back to AppName.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtelEndpoint  string
	OtelProtocol  string
	SamplingRatio float64
}

type StoreConfig struct {
	Name       string
	BaseURL    string
	Currency   string
	SuccessURL string
	CancelURL  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type EmailConfig struct {
	Provider     string
	FromAddress  string
	FromName     string
	ReplyTo      string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AttachPDF    bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig throttles the public checkout and discount endpoints per client IP.
// Rate is tokens per second.
type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

type EventsConfig struct {
	SNSTopicARN string
	AWSRegion   string
}

type AdminConfig struct {
	BootstrapKey  string
	BootstrapRole string
}

// MetricsPushConfig lets short-lived jobs such as the notifier push their
// metrics instead of waiting to be scraped. Exporter is
// prometheus_pushgateway or prometheus_remote_write; empty disables pushing.
type MetricsPushConfig struct {
	Exporter  string
	Endpoint  string
	AuthToken string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getenv("STORE_BASE_URL", "http://localhost:3000"), "/")

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "voltshop"),
		AppVersion:  getenv("SERVICE_VERSION", getenv("APP_VERSION", "0.1.0")),
		Environment: getenv("DEPLOYMENT_ENV", getenv("ENVIRONMENT", "development")),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", true),
			OtelEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			OtelProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))),
			SamplingRatio: getenvFloat64("OTEL_SAMPLING_RATIO", 0.1),
		},

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "voltshop"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 1800)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 300)),

		Store: StoreConfig{
			Name:       getenv("STORE_NAME", "Voltshop"),
			BaseURL:    baseURL,
			Currency:   strings.ToLower(getenv("STORE_CURRENCY", "usd")),
			SuccessURL: getenv("CHECKOUT_SUCCESS_URL", baseURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:  getenv("CHECKOUT_CANCEL_URL", baseURL+"/cart"),
		},
		Stripe: StripeConfig{
			SecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			WebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getenv("EMAIL_PROVIDER", "resend")),
			FromAddress:  getenv("EMAIL_FROM_ADDRESS", "orders@voltshop.local"),
			FromName:     getenv("EMAIL_FROM_NAME", "Voltshop"),
			ReplyTo:      getenv("EMAIL_REPLY_TO", ""),
			ResendAPIKey: strings.TrimSpace(getenv("RESEND_API_KEY", "")),
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			AttachPDF:    getenvBool("EMAIL_ATTACH_RECEIPT_PDF", true),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		RateLimit: RateLimitConfig{
			Enabled: getenvBool("RATE_LIMIT_ENABLED", true),
			Rate:    getenvFloat64("RATE_LIMIT_PUBLIC_RATE", 1),
			Burst:   int(getenvInt64("RATE_LIMIT_PUBLIC_BURST", 20)),
		},
		Events: EventsConfig{
			SNSTopicARN: strings.TrimSpace(getenv("EVENTS_SNS_TOPIC_ARN", "")),
			AWSRegion:   getenv("AWS_REGION", "us-east-1"),
		},
		Admin: AdminConfig{
			BootstrapKey:  strings.TrimSpace(getenv("ADMIN_BOOTSTRAP_KEY", "")),
			BootstrapRole: getenv("ADMIN_BOOTSTRAP_ROLE", "owner"),
		},
		Push: MetricsPushConfig{
			Exporter:  strings.ToLower(strings.TrimSpace(getenv("METRICS_PUSH_EXPORTER", ""))),
			Endpoint:  strings.TrimSpace(getenv("METRICS_PUSH_ENDPOINT", "")),
			AuthToken: strings.TrimSpace(getenv("METRICS_PUSH_AUTH_TOKEN", "")),
		},
		ConfirmationSweepInterval: time.Duration(getenvInt64("CONFIRMATION_SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat64(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
