package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sandbox is an offline gateway for local development. It issues deterministic
// secrets derived from the request reference and never leaves the process.
type Sandbox struct {
	// FailAbove makes intents above this many minor units fail. Zero disables it.
	FailAbove int64
}

// Name implements Gateway.
func (Sandbox) Name() string { return "sandbox" }

// CreateIntent implements Gateway.
func (s Sandbox) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	if req.AmountMinorUnits <= 0 {
		return Intent{}, errors.New("sandbox: amount must be positive")
	}
	if s.FailAbove > 0 && req.AmountMinorUnits > s.FailAbove {
		return Intent{}, fmt.Errorf("sandbox: amount %d exceeds %d", req.AmountMinorUnits, s.FailAbove)
	}
	ref := strings.ReplaceAll(strings.TrimSpace(req.Reference), "-", "")
	if ref == "" {
		ref = "local"
	}
	id := "pi_sandbox_" + ref
	return Intent{ID: id, ClientSecret: id + "_secret_" + strings.ToLower(req.Currency)}, nil
}

// Ping implements Gateway.
func (Sandbox) Ping(context.Context) error { return nil }
