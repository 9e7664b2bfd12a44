package domain

import (
	"time"

	"github.com/google/uuid"
)

// IncidentState is the reconciliation state derived from a record.
type IncidentState string

const (
	StateNone     IncidentState = "none"
	StateOpen     IncidentState = "open"
	StateResolved IncidentState = "resolved"
)

// IncidentRecord is the persisted mapping between a group key and the live
// Statuspage incident, keyed by GroupKey. Version increases by one on every
// successful reconciliation and is the compare-and-swap token.
type IncidentRecord struct {
	ID                  uuid.UUID       `json:"id"`
	GroupKey            string          `json:"group_key"`
	IncidentID          string          `json:"incident_id"`
	LastStatus          AlertStatus     `json:"last_status"`
	LastComponentStatus ComponentStatus `json:"last_component_status"`
	LastImpact          Impact          `json:"last_impact"`
	LastIncidentStatus  IncidentStatus  `json:"last_incident_status"`
	LastSummary         string          `json:"last_summary"`
	LastUpdatedAt       time.Time       `json:"last_updated_at"`
	Version             int64           `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
}

// State reports the state-machine position for this record. A nil record
// means no incident has ever been created for the key.
func (r *IncidentRecord) State() IncidentState {
	if r == nil || r.IncidentID == "" {
		return StateNone
	}
	if r.LastStatus == StatusResolved {
		return StateResolved
	}
	return StateOpen
}

// Clone returns an independent copy so callers never share a record across
// concurrent reconciliations.
func (r *IncidentRecord) Clone() *IncidentRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
