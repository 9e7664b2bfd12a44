package statuspage

import (
	"context"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

// IncidentAPI is the capability the reconciliation engine needs from the
// status page provider. The engine only cares about the logical operations;
// transport, auth and payload encoding live behind this interface.
type IncidentAPI interface {
	// CreateIncident opens a new incident and returns its identifier.
	CreateIncident(ctx context.Context, req CreateIncidentRequest) (string, error)

	// UpdateIncident patches an open incident with new severity and body.
	UpdateIncident(ctx context.Context, pageID, incidentID string, req UpdateIncidentRequest) error

	// ResolveIncident marks the incident resolved and the component
	// operational again.
	ResolveIncident(ctx context.Context, pageID, incidentID, componentID string) error

	// GetIncident fetches a single incident.
	GetIncident(ctx context.Context, pageID, incidentID string) (*Incident, error)

	// FindIncidentForComponent returns the open incident affecting the
	// component, or nil when there is none.
	FindIncidentForComponent(ctx context.Context, pageID, componentID string) (*Incident, error)
}

// CreateIncidentRequest carries everything needed to open an incident.
type CreateIncidentRequest struct {
	PageID          string
	ComponentID     string
	Name            string
	Body            string
	Status          domain.IncidentStatus
	Impact          domain.Impact
	ComponentStatus domain.ComponentStatus
}

// UpdateIncidentRequest carries the mutable fields of an open incident.
type UpdateIncidentRequest struct {
	ComponentID     string
	Body            string
	Status          domain.IncidentStatus
	Impact          domain.Impact
	ComponentStatus domain.ComponentStatus
}

// Incident is the subset of the Statuspage incident resource the bridge
// reads back.
type Incident struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	Impact     string      `json:"impact"`
	Components []Component `json:"components"`
}

// Component is a component reference embedded in an incident.
type Component struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// AffectsComponent reports whether the incident lists the component.
func (i *Incident) AffectsComponent(componentID string) bool {
	for _, c := range i.Components {
		if c.ID == componentID {
			return true
		}
	}
	return false
}
