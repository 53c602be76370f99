package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the payment gateway for readiness.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Gateway        Checker
	GatewayTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports whether the payment gateway answers within the timeout.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.gatewayTimeout())
	defer cancel()

	gatewayStatus := "ok"
	if err := h.Gateway.Ping(ctx); err != nil {
		gatewayStatus = "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	if gatewayStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"gateway": gatewayStatus})
}

func (h Handler) gatewayTimeout() time.Duration {
	if h.GatewayTimeout <= 0 {
		return 2 * time.Second
	}
	return h.GatewayTimeout
}
