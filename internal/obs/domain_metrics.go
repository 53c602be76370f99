package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DonationIntentTotal counts payment intent attempts by gateway and outcome.
	DonationIntentTotal *prometheus.CounterVec
	// DonationIntentLatency records gateway call latency in milliseconds.
	DonationIntentLatency *prometheus.HistogramVec
	// DonationValidationFailures counts rejected fields on the intent endpoint.
	DonationValidationFailures *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers donation collectors. Later
// calls are no-ops.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		DonationIntentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donation_intent_total",
			Help:      "Count of payment intent creation outcomes.",
		}, []string{"provider", "result"})
		DonationIntentLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "donation_intent_duration_ms",
			Help:      "Latency of payment gateway intent calls in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"provider"})
		DonationValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donation_validation_failures_total",
			Help:      "Count of rejected donation fields.",
		}, []string{"field"})

		mustRegisterCollector(reg, DonationIntentTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DonationIntentTotal = v
			}
		})
		mustRegisterCollector(reg, DonationIntentLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				DonationIntentLatency = v
			}
		})
		mustRegisterCollector(reg, DonationValidationFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DonationValidationFailures = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
