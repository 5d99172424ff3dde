package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/db"
)

// NewStore creates a rule store based on the given store type.
// Supported types: "memory", "postgres", "file".
func NewStore(ctx context.Context, storeType, dbDSN, rulesFile string, log zerolog.Logger) (RuleStore, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := db.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		pg := NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	case "file":
		return NewFileStore(rulesFile, log)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
