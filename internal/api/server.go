package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/audit"
	"github.com/strideiq/policyengine/internal/store"
	"github.com/strideiq/policyengine/internal/telemetry"
	"github.com/strideiq/policyengine/internal/webhook"
)

// Server wires the evaluation engine, the rule source and the audit service
// behind the HTTP surface. The engine itself stays pure; everything
// request-shaped lives here.
type Server struct {
	source      store.RuleSource
	rules       store.RuleStore
	audit       *audit.Service
	webhooks    *webhook.Dispatcher
	adminAPIKey string
	corsOrigins []string
	ratePerIP   int
	log         zerolog.Logger
}

// Options configures a Server.
type Options struct {
	Source      store.RuleSource // rule resolution for evaluations (fallback-wrapped)
	Rules       store.RuleStore  // rule management backend, may equal Source's primary
	Audit       *audit.Service
	Webhooks    *webhook.Dispatcher // optional, nil disables event dispatch
	AdminAPIKey string
	CORSOrigins []string
	RatePerIP   int // requests per minute per client IP, 0 disables
	Log         zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	return &Server{
		source:      opts.Source,
		rules:       opts.Rules,
		audit:       opts.Audit,
		webhooks:    opts.Webhooks,
		adminAPIKey: opts.AdminAPIKey,
		corsOrigins: opts.CORSOrigins,
		ratePerIP:   opts.RatePerIP,
		log:         opts.Log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(telemetry.Middleware)

	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.ratePerIP > 0 {
		r.Use(httprate.LimitByIP(s.ratePerIP, time.Minute))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/orgs/{orgID}/policy", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/audit", s.handleAudit)

		// rule management (protected)
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.authAdmin(s.handleListRules))
			r.Post("/", s.authAdmin(s.handleUpsertRule))
			r.Delete("/{ruleID}", s.authAdmin(s.handleDeleteRule))
		})
	})

	return r
}

// authAdmin guards rule management with a constant-time bearer-key check.
func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			writeErrorCode(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			writeErrorCode(w, r, http.StatusForbidden, ErrCodeForbidden, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}
