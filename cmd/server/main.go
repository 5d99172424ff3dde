package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/api"
	"github.com/strideiq/policyengine/internal/audit"
	"github.com/strideiq/policyengine/internal/config"
	"github.com/strideiq/policyengine/internal/db"
	"github.com/strideiq/policyengine/internal/rules"
	"github.com/strideiq/policyengine/internal/store"
	"github.com/strideiq/policyengine/internal/telemetry"
	"github.com/strideiq/policyengine/internal/webhook"
)

// defaultOrg receives the seeded rule set on first start.
const defaultOrg = "default"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config load failed")
	}

	log := newLogger(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	telemetry.Init()

	ctx := context.Background()

	ruleStore, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN, cfg.RulesFile, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.StoreType).Msg("rule store init failed")
	}
	defer ruleStore.Close()

	if cfg.SeedDefaults {
		seedDefaults(ctx, ruleStore, log)
	}

	sink, err := newAuditSink(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("sink", cfg.AuditSink).Msg("audit sink init failed")
	}

	auditSvc := audit.NewService(sink, nil, nil, log, cfg.AuditQueueSize)
	defer auditSvc.Close()

	source := store.NewFallbackSource(ruleStore, rules.Defaults(), log)

	var dispatcher *webhook.Dispatcher
	if len(cfg.WebhookURLs) > 0 {
		dispatcher = webhook.NewDispatcher(webhookEndpoints(cfg), log)
		dispatcher.Start()
		defer dispatcher.Close()
	}

	srvAPI := api.NewServer(api.Options{
		Source:      source,
		Rules:       ruleStore,
		Audit:       auditSvc,
		Webhooks:    dispatcher,
		AdminAPIKey: cfg.AdminAPIKey,
		CORSOrigins: cfg.CORSOrigins,
		RatePerIP:   cfg.RateLimitPerIP,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	log.Info().Msg("stopped")
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// seedDefaults loads the built-in rule set into empty writable stores so a
// fresh install evaluates something sensible.
func seedDefaults(ctx context.Context, ruleStore store.RuleStore, log zerolog.Logger) {
	switch st := ruleStore.(type) {
	case *store.MemoryStore:
		st.Seed(defaultOrg, rules.Defaults())
		log.Info().Msg("seeded default rules into memory store")
	case *store.PostgresStore:
		if err := st.Seed(ctx, defaultOrg, rules.Defaults()); err != nil {
			log.Warn().Err(err).Msg("failed to seed default rules")
			return
		}
		log.Info().Msg("seeded default rules into postgres store")
	default:
		// file store: the document itself is the source of truth
	}
}

// webhookEndpoints maps the configured subscriber URLs onto dispatcher
// endpoints sharing one signing secret.
func webhookEndpoints(cfg *config.Config) []webhook.Endpoint {
	endpoints := make([]webhook.Endpoint, 0, len(cfg.WebhookURLs))
	for _, url := range cfg.WebhookURLs {
		endpoints = append(endpoints, webhook.Endpoint{
			URL:        url,
			Secret:     cfg.WebhookSecret,
			MaxRetries: cfg.WebhookRetries,
			Timeout:    time.Duration(cfg.WebhookTimeout) * time.Second,
		})
	}
	return endpoints
}

func newAuditSink(ctx context.Context, cfg *config.Config) (audit.Sink, error) {
	switch cfg.AuditSink {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sink := audit.NewPostgresSink(pool)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return sink, nil
	default:
		return audit.NewMemorySink(cfg.AuditMaxEntries), nil
	}
}
