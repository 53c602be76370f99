package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/groundsforsupport/donate/internal/config"
	"github.com/groundsforsupport/donate/internal/health"
	"github.com/groundsforsupport/donate/internal/obs"
	"github.com/groundsforsupport/donate/internal/payment"
	"github.com/groundsforsupport/donate/internal/web"
)

var version = "dev"

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "donate-api",
			ServiceVersion: version,
			Environment:    cfg.AppEnv,
			Exporter:       cfg.TracingExporter,
			Endpoint:       cfg.OTLPEndpoint,
			Headers:        cfg.OTLPHeaders,
			SamplingRatio:  cfg.TracingSampleRatio,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	gateway, err := newGateway(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise payment gateway")
	}
	paymentSvc := &payment.Service{
		Gateway:  gateway,
		Currency: cfg.Currency,
		Logger:   logger.With().Str("component", "payment").Logger(),
	}

	pageHandler, err := web.NewHandler(web.HandlerConfig{
		Service:   paymentSvc,
		StaticDir: cfg.StaticDir,
		Currency:  cfg.Currency,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise donation page")
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), nil)
	}

	r := newRouter(routerDeps{
		Config:      cfg,
		Logger:      logger,
		Tracing:     tracingEnabled,
		HTTPMetrics: httpMetrics,
		Payment:     &payment.Handler{Svc: paymentSvc},
		Page:        pageHandler,
		Health:      health.Handler{Gateway: health.NewCachedChecker(gateway, cfg.ReadyCacheTTL)},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("payment_provider", gateway.Name()).
		Str("currency", cfg.Currency).
		Str("version", version).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func newGateway(cfg *config.Config, logger zerolog.Logger) (payment.Gateway, error) {
	switch cfg.PaymentProvider {
	case config.ProviderSandbox:
		if !cfg.IsDevelopment() {
			logger.Warn().Msg("using sandbox payment gateway; no real intents will be created")
		}
		return payment.Sandbox{}, nil
	default:
		return payment.NewStripe(payment.StripeConfig{
			SecretKey: cfg.StripeSecretKey,
			APIURL:    cfg.StripeAPIURL,
			Logger:    logger.With().Str("component", "stripe").Logger(),
		})
	}
}
