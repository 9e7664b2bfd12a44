package domain

import "time"

// AlertStatus is the aggregate state of an alert group as reported by the
// alerting manager.
type AlertStatus string

const (
	StatusFiring   AlertStatus = "firing"
	StatusResolved AlertStatus = "resolved"
)

func (s AlertStatus) Valid() bool {
	return s == StatusFiring || s == StatusResolved
}

// Impact is the Statuspage incident impact classification.
type Impact string

const (
	ImpactNone        Impact = "none"
	ImpactMaintenance Impact = "maintenance"
	ImpactMinor       Impact = "minor"
	ImpactMajor       Impact = "major"
	ImpactCritical    Impact = "critical"
)

var impactRank = map[Impact]int{
	ImpactNone:        0,
	ImpactMaintenance: 1,
	ImpactMinor:       2,
	ImpactMajor:       3,
	ImpactCritical:    4,
}

func (i Impact) Valid() bool {
	_, ok := impactRank[i]
	return ok
}

// MaxImpact returns the more severe of two impacts.
func MaxImpact(a, b Impact) Impact {
	if impactRank[b] > impactRank[a] {
		return b
	}
	return a
}

// ComponentStatus is the operational state of a Statuspage component.
type ComponentStatus string

const (
	ComponentOperational         ComponentStatus = "operational"
	ComponentUnderMaintenance    ComponentStatus = "under_maintenance"
	ComponentDegradedPerformance ComponentStatus = "degraded_performance"
	ComponentPartialOutage       ComponentStatus = "partial_outage"
	ComponentMajorOutage         ComponentStatus = "major_outage"
)

var componentStatusRank = map[ComponentStatus]int{
	ComponentOperational:         0,
	ComponentUnderMaintenance:    1,
	ComponentDegradedPerformance: 2,
	ComponentPartialOutage:       3,
	ComponentMajorOutage:         4,
}

func (s ComponentStatus) Valid() bool {
	_, ok := componentStatusRank[s]
	return ok
}

// MaxComponentStatus returns the more severe of two component statuses.
func MaxComponentStatus(a, b ComponentStatus) ComponentStatus {
	if componentStatusRank[b] > componentStatusRank[a] {
		return b
	}
	return a
}

// DefaultImpact maps a component status to the incident impact used when no
// explicit override annotation is present.
func (s ComponentStatus) DefaultImpact() Impact {
	switch s {
	case ComponentUnderMaintenance:
		return ImpactMaintenance
	case ComponentDegradedPerformance:
		return ImpactMinor
	case ComponentPartialOutage:
		return ImpactMajor
	case ComponentMajorOutage:
		return ImpactCritical
	default:
		return ImpactNone
	}
}

// IncidentStatus is the Statuspage incident lifecycle status.
type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
)

var incidentStatusRank = map[IncidentStatus]int{
	IncidentInvestigating: 0,
	IncidentIdentified:    1,
	IncidentMonitoring:    2,
	IncidentResolved:      3,
}

func (s IncidentStatus) Valid() bool {
	_, ok := incidentStatusRank[s]
	return ok
}

// MaxIncidentStatus returns the status further along the incident lifecycle.
func MaxIncidentStatus(a, b IncidentStatus) IncidentStatus {
	if incidentStatusRank[b] > incidentStatusRank[a] {
		return b
	}
	return a
}

// AlertGroupEvent is one normalized webhook delivery for a single alert
// group. Two deliveries with the same grouping labels always carry the same
// GroupKey.
type AlertGroupEvent struct {
	GroupKey        string          `json:"group_key"`
	Status          AlertStatus     `json:"status"`
	PageID          string          `json:"page_id"`
	ComponentID     string          `json:"component_id"`
	ComponentName   string          `json:"component_name"`
	Impact          Impact          `json:"impact"`
	ComponentStatus ComponentStatus `json:"component_status"`
	IncidentStatus  IncidentStatus  `json:"incident_status"`
	Summary         string          `json:"summary"`
	ReceivedAt      time.Time       `json:"received_at"`
}

// GroupKeyFor derives the deterministic reconciliation key for a page and
// component pair.
func GroupKeyFor(pageID, componentID string) string {
	return pageID + "/" + componentID
}
