package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/audience-cli/internal/model"
)

// pgPool is the subset of pgxpool.Pool the store uses; pgxmock's pool
// satisfies it for tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool. Save is a
// single upsert on the source key, so replacement is atomic.
type PostgresStore struct {
	pool    pgPool
	maxRows int
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, maxRows int) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	return &PostgresStore{pool: pool, maxRows: maxRows}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	source    TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	records   JSONB NOT NULL,
	row_count INTEGER NOT NULL,
	saved_at  TIMESTAMPTZ NOT NULL
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, source model.Source, records []model.Record) (*model.Snapshot, error) {
	capped := truncate(records, s.maxRows)
	if capped == nil {
		capped = []model.Record{}
	}

	recordsJSON, err := json.Marshal(capped)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal records")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (source, id, records, row_count, saved_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (source) DO UPDATE SET id = EXCLUDED.id, records = EXCLUDED.records,
		 row_count = EXCLUDED.row_count, saved_at = EXCLUDED.saved_at`,
		string(source), id, recordsJSON, len(capped), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save snapshot %s", source)
	}

	return &model.Snapshot{ID: id, Source: source, RowCount: len(capped), SavedAt: now}, nil
}

func (s *PostgresStore) Load(ctx context.Context, source model.Source) ([]model.Record, error) {
	var recordsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT records FROM snapshots WHERE source = $1`,
		string(source),
	).Scan(&recordsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load snapshot %s", source)
	}

	var records []model.Record
	if err := json.Unmarshal(recordsJSON, &records); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal snapshot %s", source)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
