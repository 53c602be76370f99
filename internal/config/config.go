package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderStripe  = "stripe"
	ProviderSandbox = "sandbox"
)

// ErrMissingStripeKey is returned when the stripe provider is selected without a key.
var ErrMissingStripeKey = errors.New("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	PaymentProvider    string
	StripeSecretKey    string
	StripeAPIURL       string
	Currency           string
	StaticDir          string
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	SecurityHeaders    bool
	HSTS               bool
	ReadyCacheTTL      time.Duration

	LogFormat          string
	LogLevel           string
	MetricsNamespace   string
	MetricsEnabled     bool
	MetricsBucketsMS   string
	TracingEnabled     bool
	TracingExporter    string
	OTLPEndpoint       string
	OTLPHeaders        map[string]string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		PaymentProvider:    strings.ToLower(valueOrDefault(k.String("PAYMENT_PROVIDER"), ProviderStripe)),
		StripeSecretKey:    strings.TrimSpace(k.String("STRIPE_SECRET_KEY")),
		StripeAPIURL:       strings.TrimSpace(k.String("STRIPE_API_URL")),
		Currency:           strings.ToLower(valueOrDefault(k.String("PAYMENT_CURRENCY"), "usd")),
		StaticDir:          strings.TrimSpace(k.String("STATIC_DIR")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		BodyLimitBytes:     parseInt64(k.String("HTTP_BODY_LIMIT_BYTES"), 16<<10),
		SecurityHeaders:    parseBool(k.String("SECURITY_HEADERS_ENABLED"), true),
		HSTS:               parseBool(k.String("SECURITY_HSTS_ENABLED"), false),
		ReadyCacheTTL:      parseDuration(k.String("HEALTH_READY_CACHE_TTL"), 30*time.Second),

		LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:   valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "donate"),
		MetricsEnabled:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBucketsMS:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:     parseBool(k.String("OBS_ENABLE_TRACING"), false),
		TracingExporter:    valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		OTLPEndpoint:       strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		OTLPHeaders:        parseKeyValues(k.String("OBS_OTLP_HEADERS")),
		TracingSampleRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
	}

	switch cfg.PaymentProvider {
	case ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, ErrMissingStripeKey
		}
	case ProviderSandbox:
	default:
		return nil, fmt.Errorf("PAYMENT_PROVIDER %q is not supported", cfg.PaymentProvider)
	}
	if len(cfg.Currency) != 3 {
		return nil, fmt.Errorf("PAYMENT_CURRENCY %q must be a three-letter ISO code", cfg.Currency)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "development")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseKeyValues reads "k1=v1,k2=v2". Entries without "=" or with an empty key
// are skipped.
func parseKeyValues(value string) map[string]string {
	out := map[string]string{}
	for _, part := range splitAndTrim(value) {
		key, val, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(val)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt64(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
