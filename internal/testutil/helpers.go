// Package testutil provides shared helpers for package tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/api"
	"github.com/strideiq/policyengine/internal/audit"
	"github.com/strideiq/policyengine/internal/rules"
	"github.com/strideiq/policyengine/internal/store"
)

// TestServer bundles an API server with its in-memory collaborators.
type TestServer struct {
	Server *api.Server
	Store  *store.MemoryStore
	Sink   *audit.MemorySink
	Audit  *audit.Service
}

// NewTestServer creates a test server wired entirely in memory: memory rule
// store behind a fallback source, memory audit sink behind the async service.
func NewTestServer(t *testing.T, adminKey string) *TestServer {
	t.Helper()

	memStore := store.NewMemoryStore()
	sink := audit.NewMemorySink(audit.DefaultMaxEntries)
	svc := audit.NewService(sink, nil, nil, zerolog.Nop(), 64)
	t.Cleanup(func() { _ = svc.Close() })

	server := api.NewServer(api.Options{
		Source:      store.NewFallbackSource(memStore, rules.Defaults(), zerolog.Nop()),
		Rules:       memStore,
		Audit:       svc,
		AdminAPIKey: adminKey,
		Log:         zerolog.Nop(),
	})

	return &TestServer{Server: server, Store: memStore, Sink: sink, Audit: svc}
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedRules populates the store with test rules.
func SeedRules(t *testing.T, st *store.MemoryStore, orgID string, set []rules.Rule) {
	t.Helper()
	st.Seed(orgID, set)
}
