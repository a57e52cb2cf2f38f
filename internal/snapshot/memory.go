package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/audience-cli/internal/model"
)

// MemoryStore implements Store in memory. Used for tests and the
// "memory" store driver; snapshots do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	maxRows  int
	datasets map[model.Source][]model.Record
}

// NewMemory creates an empty in-memory store with the given row cap
// (0 = DefaultMaxRows).
func NewMemory(maxRows int) *MemoryStore {
	return &MemoryStore{
		maxRows:  maxRows,
		datasets: make(map[model.Source][]model.Record),
	}
}

func (s *MemoryStore) Save(_ context.Context, source model.Source, records []model.Record) (*model.Snapshot, error) {
	capped := model.CloneRecords(truncate(records, s.maxRows))
	if capped == nil {
		capped = []model.Record{}
	}

	s.mu.Lock()
	s.datasets[source] = capped
	s.mu.Unlock()

	return &model.Snapshot{
		ID:       uuid.New().String(),
		Source:   source,
		RowCount: len(capped),
		SavedAt:  time.Now().UTC(),
	}, nil
}

func (s *MemoryStore) Load(_ context.Context, source model.Source) ([]model.Record, error) {
	s.mu.RLock()
	records := s.datasets[source]
	s.mu.RUnlock()

	if records == nil {
		return []model.Record{}, nil
	}
	return model.CloneRecords(records), nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
