package overrides

import (
	"context"
	"sync"

	"github.com/clearway-dev/clearway/internal/admission"
	"github.com/clearway-dev/clearway/internal/models"
	"gorm.io/gorm"
)

// Store holds the external per-operation cooldown overrides: static
// entries from the config file layered under rows from the database.
// Reads serve an in-memory snapshot so the admission path never touches
// the database; Refresh rebuilds the snapshot after admin writes.
type Store struct {
	db     *gorm.DB
	static map[string]int

	mu       sync.RWMutex
	snapshot admission.OverrideMap
}

// NewStore constructs a Store seeded with the config-file overrides.
func NewStore(db *gorm.DB, static map[string]int) *Store {
	snapshot := make(admission.OverrideMap, len(static))
	for key, seconds := range static {
		snapshot[key] = seconds
	}
	return &Store{
		db:       db,
		static:   static,
		snapshot: snapshot,
	}
}

// Refresh rebuilds the snapshot from the database, with database rows
// taking precedence over config-file entries for the same key.
func (s *Store) Refresh(ctx context.Context) error {
	next := make(admission.OverrideMap, len(s.static))
	for key, seconds := range s.static {
		next[key] = seconds
	}

	if s.db != nil {
		var rows []models.CooldownOverride
		if errFind := s.db.WithContext(ctx).Find(&rows).Error; errFind != nil {
			return errFind
		}
		for _, row := range rows {
			next[row.OperationKey] = row.Seconds
		}
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current override map.
func (s *Store) Snapshot() admission.OverrideMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(admission.OverrideMap, len(s.snapshot))
	for key, seconds := range s.snapshot {
		out[key] = seconds
	}
	return out
}

// Provider adapts the store to the resolver's override source.
func (s *Store) Provider() admission.OverrideProvider {
	return s.Snapshot
}
