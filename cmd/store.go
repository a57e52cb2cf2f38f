package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/audience-cli/internal/config"
	"github.com/sells-group/audience-cli/internal/snapshot"
)

// openStore builds the snapshot store from config. SQLite is the
// default; "memory" exists for local experiments and tests.
func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		store, err := snapshot.NewSQLite(cfg.Store.Path, cfg.Ingest.MaxRows)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close() //nolint:errcheck
			return nil, err
		}
		return store, nil
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver (AUDIENCE_STORE_DATABASE_URL)")
		}
		store, err := snapshot.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool, cfg.Ingest.MaxRows)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close() //nolint:errcheck
			return nil, err
		}
		return store, nil
	case "memory":
		return snapshot.NewMemory(cfg.Ingest.MaxRows), nil
	default:
		return nil, eris.Errorf("unknown store driver %q (use sqlite, postgres, or memory)", cfg.Store.Driver)
	}
}
