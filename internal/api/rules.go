package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strideiq/policyengine/internal/rules"
	"github.com/strideiq/policyengine/internal/webhook"
)

// rulesResponse wraps the rule list for GET /orgs/{orgID}/policy/rules.
type rulesResponse struct {
	Rules []rules.Rule `json:"rules"`
}

// handleListRules handles GET /orgs/{orgID}/policy/rules.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	set, err := s.rules.ListRules(r.Context(), orgID)
	if err != nil {
		writeErrorCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to list rules")
		return
	}
	if set == nil {
		set = []rules.Rule{}
	}

	writeJSON(w, http.StatusOK, rulesResponse{Rules: set})
}

// handleUpsertRule handles POST /orgs/{orgID}/policy/rules. Validation
// happens here, at the rule-source boundary, never inside the engine.
func (s *Server) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	var rule rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	if err := rules.ValidateRule(rule); err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if err := s.rules.UpsertRule(r.Context(), orgID, rule); err != nil {
		writeErrorCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to store rule")
		return
	}

	if s.webhooks != nil {
		s.webhooks.Dispatch(webhook.NewRuleEvent(webhook.EventRuleUpdated, orgID, rule.ID, rule))
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": rule.ID})
}

// handleDeleteRule handles DELETE /orgs/{orgID}/policy/rules/{ruleID}.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	ruleID := chi.URLParam(r, "ruleID")

	if err := s.rules.DeleteRule(r.Context(), orgID, ruleID); err != nil {
		writeErrorCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to delete rule")
		return
	}

	if s.webhooks != nil {
		s.webhooks.Dispatch(webhook.NewRuleEvent(webhook.EventRuleDeleted, orgID, ruleID, nil))
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
