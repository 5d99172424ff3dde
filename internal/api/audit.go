package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strideiq/policyengine/internal/audit"
)

const (
	defaultAuditLimit = 10
	maxAuditLimit     = 100
)

// auditResponse wraps the entries so the payload stays extensible.
type auditResponse struct {
	Entries []audit.Entry `json:"entries"`
}

// handleAudit handles GET /orgs/{orgID}/policy/audit, returning the last N
// audit entries newest first.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	limit := queryInt(r, "limit", defaultAuditLimit, maxAuditLimit)

	entries, err := s.audit.Recent(r.Context(), orgID, limit)
	if err != nil {
		writeErrorCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "audit readback failed")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(w, http.StatusOK, auditResponse{Entries: entries})
}
