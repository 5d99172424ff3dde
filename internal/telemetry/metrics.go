package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Evaluations counts policy evaluations by outcome (match / no_match).
	Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_evaluations_total",
		Help: "Total policy evaluations by outcome",
	}, []string{"outcome"})

	// RuleSourceFallbacks counts substitutions of the default rule set
	// after a primary rule-source failure.
	RuleSourceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rule_source_fallbacks_total",
		Help: "Times the default rule set was substituted for a failed rule source",
	})

	// AuditDropped counts audit entries dropped because the queue was full.
	AuditDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_dropped_total",
		Help: "Audit entries dropped due to a full queue",
	})

	// RulesLoaded reports the size of the rule set used by the most recent
	// evaluation.
	RulesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rules_loaded",
		Help: "Number of rules in the most recently resolved rule set",
	})

	// WebhookDeliveries counts terminal webhook delivery outcomes.
	WebhookDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook deliveries by terminal outcome",
	}, []string{"outcome"})

	// WebhookDropped counts events dropped because the dispatch queue was full.
	WebhookDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_dropped_total",
		Help: "Webhook events dropped due to a full queue",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, Evaluations, RuleSourceFallbacks, AuditDropped, RulesLoaded, WebhookDeliveries, WebhookDropped)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
