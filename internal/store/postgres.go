package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the store needs, kept narrow so
// pgxmock can stand in during tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists incident records in the incident_records table.
type PostgresStore struct {
	pool PgxPool
}

func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, groupKey string) (*domain.IncidentRecord, error) {
	query := `
		SELECT id, group_key, incident_id, last_status, last_component_status,
		       last_impact, last_incident_status, last_summary, last_updated_at,
		       version, created_at
		FROM incident_records
		WHERE group_key = $1
	`

	var record domain.IncidentRecord
	var lastStatus, lastComponentStatus, lastImpact, lastIncidentStatus string

	err := s.pool.QueryRow(ctx, query, groupKey).Scan(
		&record.ID,
		&record.GroupKey,
		&record.IncidentID,
		&lastStatus,
		&lastComponentStatus,
		&lastImpact,
		&lastIncidentStatus,
		&record.LastSummary,
		&record.LastUpdatedAt,
		&record.Version,
		&record.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get incident record: %w", err)
	}

	record.LastStatus = domain.AlertStatus(lastStatus)
	record.LastComponentStatus = domain.ComponentStatus(lastComponentStatus)
	record.LastImpact = domain.Impact(lastImpact)
	record.LastIncidentStatus = domain.IncidentStatus(lastIncidentStatus)

	return &record, nil
}

func (s *PostgresStore) Create(ctx context.Context, record *domain.IncidentRecord) error {
	query := `
		INSERT INTO incident_records (
			id, group_key, incident_id, last_status, last_component_status,
			last_impact, last_incident_status, last_summary, last_updated_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		record.ID,
		record.GroupKey,
		record.IncidentID,
		string(record.LastStatus),
		string(record.LastComponentStatus),
		string(record.LastImpact),
		string(record.LastIncidentStatus),
		record.LastSummary,
		record.LastUpdatedAt,
		record.Version,
	).Scan(&record.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRecordExists
		}
		return fmt.Errorf("create incident record: %w", err)
	}

	return nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, groupKey string, expectedVersion int64, record *domain.IncidentRecord) error {
	query := `
		UPDATE incident_records
		SET incident_id = $1,
		    last_status = $2,
		    last_component_status = $3,
		    last_impact = $4,
		    last_incident_status = $5,
		    last_summary = $6,
		    last_updated_at = $7,
		    version = $8
		WHERE group_key = $9 AND version = $10
	`

	result, err := s.pool.Exec(ctx, query,
		record.IncidentID,
		string(record.LastStatus),
		string(record.LastComponentStatus),
		string(record.LastImpact),
		string(record.LastIncidentStatus),
		record.LastSummary,
		record.LastUpdatedAt,
		record.Version,
		groupKey,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("compare and swap incident record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

func (s *PostgresStore) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM incident_records
		WHERE last_status = 'resolved' AND last_updated_at < $1
	`

	result, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete resolved incident records: %w", err)
	}

	return result.RowsAffected(), nil
}

// isUniqueViolation checks if the error is a unique constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "23505") ||
		strings.Contains(errMsg, "unique") ||
		strings.Contains(errMsg, "duplicate key")
}
