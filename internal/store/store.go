// Package store owns IncidentRecord persistence. CompareAndSwap is the only
// mutation primitive for existing records, which keeps concurrent
// reconciliations for the same group key from silently overwriting each
// other.
package store

import (
	"context"
	"time"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

// IncidentStore maps group keys to incident records.
type IncidentStore interface {
	// Get returns the record for the group key, or domain.ErrRecordNotFound.
	Get(ctx context.Context, groupKey string) (*domain.IncidentRecord, error)

	// Create inserts the first record for a group key. Returns
	// domain.ErrRecordExists when another writer got there first.
	Create(ctx context.Context, record *domain.IncidentRecord) error

	// CompareAndSwap replaces the record only if its current version equals
	// expectedVersion. A mismatch, including a record that disappeared,
	// returns domain.ErrVersionConflict so the caller re-reads and
	// re-evaluates instead of blindly retrying the stale write.
	CompareAndSwap(ctx context.Context, groupKey string, expectedVersion int64, record *domain.IncidentRecord) error

	// DeleteResolvedBefore removes resolved records whose last update is
	// older than the cutoff and returns how many were dropped.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
