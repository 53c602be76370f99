package payment

import (
	"context"
	"errors"
)

var (
	// ErrGatewayNotConfigured is returned when no gateway is wired into the service.
	ErrGatewayNotConfigured = errors.New("payment: gateway not configured")
	// ErrMissingClientSecret is returned when a gateway reports success without a secret.
	ErrMissingClientSecret = errors.New("payment: gateway returned no client secret")
)

// IntentRequest captures what the gateway needs to open a payment intent.
type IntentRequest struct {
	AmountMinorUnits        int64
	Currency                string
	ReceiptEmail            string
	AutomaticPaymentMethods bool
	Reference               string
}

// Intent is the part of a gateway payment intent the donor's browser needs.
type Intent struct {
	ID           string `json:"-"`
	ClientSecret string `json:"clientSecret"`
}

// Gateway abstracts the upstream payment processor.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	Ping(ctx context.Context) error
}

// Result is the outcome of a single intent attempt. Exactly one of Intent or Err
// is meaningful: check Succeeded before reading Intent.
type Result struct {
	Intent    Intent
	Reference string
	Err       error
}

// Succeeded reports whether the gateway issued a client secret.
func (r Result) Succeeded() bool {
	return r.Err == nil
}
