package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/groundsforsupport/donate/internal/donation"
	"github.com/groundsforsupport/donate/internal/obs"
)

// DefaultCurrency is used when the service has no currency configured.
const DefaultCurrency = "usd"

// Service turns validated donations into gateway payment intents.
type Service struct {
	Gateway  Gateway
	Currency string
	Logger   zerolog.Logger
	// NewReference returns the reference attached to each intent. Defaults to a
	// random UUID.
	NewReference func() string
}

// CreateIntent makes exactly one gateway call for in. The caller is expected to
// have validated in already. Failures are logged here with their cause; the
// returned Result still carries the error so callers can branch on it.
func (s *Service) CreateIntent(ctx context.Context, in donation.Input) Result {
	ref := s.reference()
	if s == nil || s.Gateway == nil {
		return Result{Reference: ref, Err: ErrGatewayNotConfigured}
	}
	provider := s.Gateway.Name()

	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreateIntent")
	defer span.End()

	minor, err := in.MinorUnits()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "amount out of range")
		s.logger(ctx).Warn().Err(err).
			Str("provider", provider).
			Str("donation_reference", ref).
			Msg("donation amount rejected before gateway call")
		return Result{Reference: ref, Err: err}
	}

	req := IntentRequest{
		AmountMinorUnits:        minor,
		Currency:                s.currency(),
		ReceiptEmail:            in.ReceiptEmail(),
		AutomaticPaymentMethods: true,
		Reference:               ref,
	}
	span.SetAttributes(
		attribute.String("payment.provider", provider),
		attribute.String("donation.reference", ref),
		attribute.Int64("donation.amount_minor", req.AmountMinorUnits),
		attribute.String("donation.currency", req.Currency),
		attribute.Bool("donation.receipt", req.ReceiptEmail != ""),
	)

	start := time.Now()
	intent, err := s.Gateway.CreateIntent(ctx, req)
	elapsed := time.Since(start)
	if err == nil && strings.TrimSpace(intent.ClientSecret) == "" {
		err = ErrMissingClientSecret
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if obs.DonationIntentTotal != nil {
		obs.DonationIntentTotal.WithLabelValues(provider, outcome).Inc()
	}
	if obs.DonationIntentLatency != nil {
		obs.DonationIntentLatency.WithLabelValues(provider).Observe(obs.DurationMillis(elapsed))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway failure")
		evt := s.logger(ctx).Error().Err(err).
			Str("provider", provider).
			Str("donation_reference", ref).
			Int64("amount_minor", req.AmountMinorUnits).
			Int64("duration_ms", elapsed.Milliseconds())
		gatewayErrorFields(evt, err).Msg("create payment intent failed")
		return Result{Reference: ref, Err: err}
	}

	span.SetAttributes(attribute.String("payment.intent_id", intent.ID))
	return Result{Intent: intent, Reference: ref}
}

func (s *Service) currency() string {
	c := strings.ToLower(strings.TrimSpace(s.Currency))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func (s *Service) reference() string {
	if s != nil && s.NewReference != nil {
		return s.NewReference()
	}
	return uuid.NewString()
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.Logger
}
