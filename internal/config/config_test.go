package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithSandbox(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PAYMENT_PROVIDER":       "sandbox",
		"STRIPE_SECRET_KEY":      "",
		"PORT":                   "",
		"PAYMENT_CURRENCY":       "",
		"HTTP_BODY_LIMIT_BYTES":  "",
		"APP_ENV":                "",
		"HEALTH_READY_CACHE_TTL": "",
	})
	require.NoError(t, err)
	require.Equal(t, ProviderSandbox, cfg.PaymentProvider)
	require.Equal(t, "usd", cfg.Currency)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, int64(16<<10), cfg.BodyLimitBytes)
	require.True(t, cfg.IsDevelopment())
	require.True(t, cfg.SecurityHeaders)
	require.Equal(t, 30*time.Second, cfg.ReadyCacheTTL)
}

func TestLoadRequiresStripeKey(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"PAYMENT_PROVIDER":  "stripe",
		"STRIPE_SECRET_KEY": "",
	})
	require.ErrorIs(t, err, ErrMissingStripeKey)
}

func TestLoadStripe(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PAYMENT_PROVIDER":     "Stripe",
		"STRIPE_SECRET_KEY":    "sk_test_abc",
		"STRIPE_API_URL":       "http://localhost:12111",
		"PAYMENT_CURRENCY":     "USD",
		"PORT":                 ":9090",
		"CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
	})
	require.NoError(t, err)
	require.Equal(t, ProviderStripe, cfg.PaymentProvider)
	require.Equal(t, "sk_test_abc", cfg.StripeSecretKey)
	require.Equal(t, "http://localhost:12111", cfg.StripeAPIURL)
	require.Equal(t, "usd", cfg.Currency)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	_, err := LoadForTests(map[string]string{"PAYMENT_PROVIDER": "paypal"})
	require.Error(t, err)
}

func TestLoadRejectsBadCurrency(t *testing.T) {
	_, err := LoadForTests(map[string]string{"PAYMENT_PROVIDER": "sandbox", "PAYMENT_CURRENCY": "dollars"})
	require.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	require.True(t, parseBool("", true))
	require.False(t, parseBool("off", true))
	require.Equal(t, int64(5), parseInt64("x", 5))
	require.Equal(t, int64(5), parseInt64("-1", 5))
	require.Equal(t, 0.25, parseFloat("0.25", 1))
	require.Equal(t, 10*time.Second, parseDuration("10s", time.Second))
	require.Equal(t, time.Duration(0), parseDuration("0s", time.Second))
	require.Equal(t, time.Second, parseDuration("soon", time.Second))
	require.Equal(t, map[string]string{"x-api-key": "abc", "tenant": "a=b"}, parseKeyValues("x-api-key=abc, tenant=a=b, junk, =v"))
	require.Nil(t, parseKeyValues(""))
}
