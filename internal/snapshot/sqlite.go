package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/audience-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. One row per
// source; Save is a single-statement upsert, so readers either see the
// old snapshot or the new one, never a partial write.
type SQLiteStore struct {
	db      *sql.DB
	maxRows int
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. maxRows of 0 uses DefaultMaxRows.
func NewSQLite(dsn string, maxRows int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, maxRows: maxRows}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	source    TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	records   TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	saved_at  DATETIME NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, source model.Source, records []model.Record) (*model.Snapshot, error) {
	capped := truncate(records, s.maxRows)
	if capped == nil {
		capped = []model.Record{}
	}

	recordsJSON, err := json.Marshal(capped)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal records")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (source, id, records, row_count, saved_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET id = excluded.id, records = excluded.records,
		 row_count = excluded.row_count, saved_at = excluded.saved_at`,
		string(source), id, string(recordsJSON), len(capped), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: save snapshot %s", source)
	}

	return &model.Snapshot{ID: id, Source: source, RowCount: len(capped), SavedAt: now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, source model.Source) ([]model.Record, error) {
	var recordsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT records FROM snapshots WHERE source = ?`,
		string(source),
	).Scan(&recordsJSON)
	if err == sql.ErrNoRows {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load snapshot %s", source)
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal snapshot %s", source)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
