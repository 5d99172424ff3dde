package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/strideiq/policyengine/internal/engine"
	"github.com/strideiq/policyengine/internal/telemetry"
	"github.com/strideiq/policyengine/internal/webhook"
)

// handleEvaluate handles POST /orgs/{orgID}/policy/evaluate.
//
// The identifier precondition is the only client-visible failure: a missing
// expense_id is a 400. Everything else, including a failed rule source,
// degrades to a well-formed result.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	var expense engine.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	if strings.TrimSpace(expense.ExpenseID) == "" {
		writeErrorCode(w, r, http.StatusBadRequest, ErrCodeMissingField, "expense_id is required")
		return
	}

	ruleSet, err := s.source.ActiveRules(r.Context(), orgID)
	if err != nil {
		// The fallback source swallows failures; a raw store wired directly
		// still must not fail the evaluation.
		s.log.Warn().Err(err).Str("org", orgID).Msg("rule source failed, evaluating with empty rule set")
		ruleSet = nil
	}
	telemetry.RulesLoaded.Set(float64(len(ruleSet)))

	result := engine.Evaluate(&expense, ruleSet)

	outcome := "no_match"
	if result.WinningRule != nil {
		outcome = "match"
	}
	telemetry.Evaluations.WithLabelValues(outcome).Inc()

	if s.audit != nil {
		s.audit.Record(orgID, expense, result)
	}
	if s.webhooks != nil && result.WinningRule != nil {
		s.webhooks.Dispatch(webhook.NewExpenseFlaggedEvent(orgID, expense.ExpenseID, expense, result))
	}

	writeJSON(w, http.StatusOK, result)
}
