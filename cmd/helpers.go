package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/engine"
	"github.com/sells-group/munitax/internal/store"
)

// newEngine builds the engine from configuration defaults.
func newEngine() *engine.Engine {
	return engine.New(cfg.Engine.Jurisdiction, decimal.NewFromFloat(cfg.Engine.VarianceThreshold))
}

// initStore opens the configured run-audit store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "munitax.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
