package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/rules"
	"github.com/strideiq/policyengine/internal/telemetry"
)

// RuleSource is the read-side contract the evaluation layer depends on: one
// consistent rule-set snapshot per call.
type RuleSource interface {
	ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error)
}

// FallbackSource resolves rules in two stages: it asks the primary store
// first and substitutes an injected default set when the store fails. The
// substitution is logged and counted, and callers never see a source error,
// so an evaluation response can always be produced.
type FallbackSource struct {
	primary  RuleSource
	defaults []rules.Rule
	log      zerolog.Logger
}

// NewFallbackSource wraps primary with the given default rule set.
func NewFallbackSource(primary RuleSource, defaults []rules.Rule, log zerolog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, defaults: defaults, log: log}
}

// ActiveRules returns the primary store's active rules, or a copy of the
// default set when the store fails. A successful empty result is returned
// as-is: only source failure triggers the substitution.
func (f *FallbackSource) ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	set, err := f.primary.ActiveRules(ctx, orgID)
	if err == nil {
		return set, nil
	}

	telemetry.RuleSourceFallbacks.Inc()
	f.log.Warn().Err(err).Str("org", orgID).Msg("rule source failed, substituting default rule set")

	fallback := make([]rules.Rule, len(f.defaults))
	copy(fallback, f.defaults)
	return fallback, nil
}
