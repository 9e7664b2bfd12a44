package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

// MemoryStore is an in-memory IncidentStore for single-instance deployments
// and tests. Records are copied on the way in and out so callers never hold
// a reference into the map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.IncidentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*domain.IncidentRecord),
	}
}

func (s *MemoryStore) Get(_ context.Context, groupKey string) (*domain.IncidentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[groupKey]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return record.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, record *domain.IncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.GroupKey]; exists {
		return domain.ErrRecordExists
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.records[record.GroupKey] = record.Clone()
	return nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, groupKey string, expectedVersion int64, record *domain.IncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[groupKey]
	if !ok || current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	next := record.Clone()
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	s.records[groupKey] = next
	return nil
}

func (s *MemoryStore) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, record := range s.records {
		if record.LastStatus == domain.StatusResolved && record.LastUpdatedAt.Before(cutoff) {
			delete(s.records, key)
			deleted++
		}
	}

	return deleted, nil
}
