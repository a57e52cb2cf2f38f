// Package snapshot persists the latest capped dataset per upload source.
package snapshot

import (
	"context"

	"github.com/sells-group/audience-cli/internal/model"
)

// DefaultMaxRows caps how many normalized rows a snapshot retains. The
// cap keeps uploads cheap while the overlap report only needs a bounded
// working set; it is configurable via ingest.max_rows.
const DefaultMaxRows = 100

// Store persists the most recent normalized record set per source. Save
// is a wholesale replace of any prior snapshot for that source; there is
// no merge or append. Concurrent saves of the same source may race, in
// which case the last writer wins — the single-key atomic upsert keeps a
// half-written snapshot from ever being visible to Load.
type Store interface {
	// Save truncates records to the configured cap and replaces the
	// source's snapshot.
	Save(ctx context.Context, source model.Source, records []model.Record) (*model.Snapshot, error)
	// Load returns the latest snapshot's records, or an empty slice if
	// the source has never been saved. Callers own the returned slice.
	Load(ctx context.Context, source model.Source) ([]model.Record, error)

	Migrate(ctx context.Context) error
	Close() error
}

// truncate applies the row cap, defaulting to DefaultMaxRows when max
// is unset.
func truncate(records []model.Record, max int) []model.Record {
	if max <= 0 {
		max = DefaultMaxRows
	}
	if len(records) > max {
		return records[:max]
	}
	return records
}
