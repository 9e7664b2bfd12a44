package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

func TestPostgresStore_Get(t *testing.T) {
	recordID := uuid.New()
	now := time.Now().UTC()

	tests := []struct {
		name      string
		groupKey  string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.IncidentRecord
		wantErr   error
	}{
		{
			name:     "successful retrieval",
			groupKey: "p1/c1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "group_key", "incident_id", "last_status", "last_component_status",
					"last_impact", "last_incident_status", "last_summary", "last_updated_at",
					"version", "created_at",
				}).AddRow(
					recordID,
					"p1/c1",
					"inc_1",
					"firing",
					"partial_outage",
					"major",
					"identified",
					"api is down",
					now,
					int64(3),
					now,
				)

				mock.ExpectQuery(`FROM incident_records`).
					WithArgs("p1/c1").
					WillReturnRows(rows)
			},
			want: &domain.IncidentRecord{
				ID:                  recordID,
				GroupKey:            "p1/c1",
				IncidentID:          "inc_1",
				LastStatus:          domain.StatusFiring,
				LastComponentStatus: domain.ComponentPartialOutage,
				LastImpact:          domain.ImpactMajor,
				LastIncidentStatus:  domain.IncidentIdentified,
				LastSummary:         "api is down",
				LastUpdatedAt:       now,
				Version:             3,
				CreatedAt:           now,
			},
		},
		{
			name:     "record not found",
			groupKey: "p1/missing",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM incident_records`).
					WithArgs("p1/missing").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:     "database error",
			groupKey: "p1/c1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM incident_records`).
					WithArgs("p1/c1").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("get incident record"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			s := NewPostgresStore(mock)
			got, err := s.Get(context.Background(), tt.groupKey)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrRecordNotFound) {
					assert.ErrorIs(t, err, domain.ErrRecordNotFound)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_Create(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful insert",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO incident_records`).
					WithArgs(
						pgxmock.AnyArg(), "p1/c1", "inc_1", "firing", "partial_outage",
						"major", "identified", "api is down", now, int64(1),
					).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
		},
		{
			name: "duplicate group key",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO incident_records`).
					WithArgs(
						pgxmock.AnyArg(), "p1/c1", "inc_1", "firing", "partial_outage",
						"major", "identified", "api is down", now, int64(1),
					).
					WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "incident_records_group_key_key" (SQLSTATE 23505)`))
			},
			wantErr: domain.ErrRecordExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			s := NewPostgresStore(mock)
			record := &domain.IncidentRecord{
				GroupKey:            "p1/c1",
				IncidentID:          "inc_1",
				LastStatus:          domain.StatusFiring,
				LastComponentStatus: domain.ComponentPartialOutage,
				LastImpact:          domain.ImpactMajor,
				LastIncidentStatus:  domain.IncidentIdentified,
				LastSummary:         "api is down",
				LastUpdatedAt:       now,
				Version:             1,
			}

			err = s.Create(context.Background(), record)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, record.ID)
				assert.Equal(t, now, record.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_CompareAndSwap(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful swap",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE incident_records`).
					WithArgs(
						"inc_1", "resolved", "operational", "major", "resolved",
						"api is down", now, int64(2), "p1/c1", int64(1),
					).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "version mismatch",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE incident_records`).
					WithArgs(
						"inc_1", "resolved", "operational", "major", "resolved",
						"api is down", now, int64(2), "p1/c1", int64(1),
					).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: domain.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			s := NewPostgresStore(mock)
			record := &domain.IncidentRecord{
				GroupKey:            "p1/c1",
				IncidentID:          "inc_1",
				LastStatus:          domain.StatusResolved,
				LastComponentStatus: domain.ComponentOperational,
				LastImpact:          domain.ImpactMajor,
				LastIncidentStatus:  domain.IncidentResolved,
				LastSummary:         "api is down",
				LastUpdatedAt:       now,
				Version:             2,
			}

			err = s.CompareAndSwap(context.Background(), "p1/c1", 1, record)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_DeleteResolvedBefore(t *testing.T) {
	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM incident_records`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	s := NewPostgresStore(mock)
	deleted, err := s.DeleteResolvedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
