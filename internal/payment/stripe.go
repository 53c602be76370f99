package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StripeConfig configures the Stripe gateway adapter.
type StripeConfig struct {
	SecretKey string
	// APIURL overrides the Stripe API base URL. Empty means the live endpoint.
	APIURL     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Stripe creates payment intents through the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe builds a Stripe gateway. The SDK's own network retries are disabled;
// a failed call surfaces to the caller as is.
func NewStripe(cfg StripeConfig) (*Stripe, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	instrumented := *httpClient
	instrumented.Transport = otelhttp.NewTransport(base)

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &instrumented,
		LeveledLogger:     stripeLogger{logger: cfg.Logger},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if u := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"); u != "" {
		backendCfg.URL = stripe.String(u)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &Stripe{api: api}, nil
}

// Name implements Gateway.
func (s *Stripe) Name() string { return "stripe" }

// CreateIntent implements Gateway.
func (s *Stripe) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinorUnits),
		Currency: stripe.String(req.Currency),
	}
	if req.AutomaticPaymentMethods {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Reference != "" {
		params.AddMetadata("donation_reference", req.Reference)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// Ping checks that the API key is accepted by fetching the account balance.
func (s *Stripe) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	if _, err := s.api.Balance.Get(params); err != nil {
		return fmt.Errorf("stripe: ping: %w", err)
	}
	return nil
}

// stripeLogger routes SDK log lines through zerolog.
type stripeLogger struct {
	logger zerolog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Infof(format string, v ...interface{})  { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Warnf(format string, v ...interface{})  { l.logger.Warn().Msgf(format, v...) }
func (l stripeLogger) Errorf(format string, v ...interface{}) { l.logger.Error().Msgf(format, v...) }

// gatewayErrorFields extracts the Stripe error classification for logging.
func gatewayErrorFields(evt *zerolog.Event, err error) *zerolog.Event {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return evt
	}
	return evt.
		Str("stripe_type", string(serr.Type)).
		Str("stripe_code", string(serr.Code)).
		Int("stripe_status", serr.HTTPStatusCode).
		Str("stripe_request_id", serr.RequestID)
}
