package alert

import (
	"errors"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
)

const fallbackSummary = "Service experiencing issues"

// Normalize converts a raw Alertmanager delivery into a canonical
// AlertGroupEvent. It is a pure function: validation failures come back as
// non-retryable AppErrors and nothing else happens.
//
// Severity is aggregated across the eligible alerts in the group: the
// highest impact override and incident status win, while the component
// status is taken from firing alerts only, so a half-resolved group keeps
// reporting the worst still-active state.
func Normalize(p *Payload, receivedAt time.Time) (*domain.AlertGroupEvent, error) {
	if p == nil {
		return nil, domain.ErrBadRequest.WithError(errors.New("empty payload"))
	}

	pageID := p.GroupLabels[LabelPageID]
	if pageID == "" {
		return nil, domain.MissingField(LabelPageID)
	}
	componentID := p.GroupLabels[LabelComponentID]
	if componentID == "" {
		return nil, domain.MissingField(LabelComponentID)
	}

	if p.Status == "" {
		return nil, domain.MissingField("status")
	}
	status := domain.AlertStatus(p.Status)
	if !status.Valid() {
		return nil, domain.InvalidEnum("status", p.Status)
	}

	var alerts []Alert
	for _, a := range p.Alerts {
		if a.eligible() {
			alerts = append(alerts, a)
		}
	}

	componentStatus, err := aggregateComponentStatus(alerts, status)
	if err != nil {
		return nil, err
	}

	impact, err := aggregateImpact(alerts, componentStatus)
	if err != nil {
		return nil, err
	}

	incidentStatus, err := aggregateIncidentStatus(alerts)
	if err != nil {
		return nil, err
	}

	return &domain.AlertGroupEvent{
		GroupKey:        domain.GroupKeyFor(pageID, componentID),
		Status:          status,
		PageID:          pageID,
		ComponentID:     componentID,
		ComponentName:   componentName(alerts, componentID),
		Impact:          impact,
		ComponentStatus: componentStatus,
		IncidentStatus:  incidentStatus,
		Summary:         buildSummary(alerts),
		ReceivedAt:      receivedAt.UTC(),
	}, nil
}

// aggregateComponentStatus validates the annotation on every eligible alert
// but only firing alerts contribute to the result. With no annotated firing
// alert, a firing group defaults to partial_outage and a resolved group to
// operational.
func aggregateComponentStatus(alerts []Alert, status domain.AlertStatus) (domain.ComponentStatus, error) {
	result := domain.ComponentOperational
	if status == domain.StatusFiring {
		result = domain.ComponentPartialOutage
	}

	seen := false
	for i := range alerts {
		v := alerts[i].annotation(AnnotationComponentStatus)
		if v == "" {
			continue
		}
		cs := domain.ComponentStatus(v)
		if !cs.Valid() {
			return "", domain.InvalidEnum(AnnotationComponentStatus, v)
		}
		if !alerts[i].firing() {
			continue
		}
		if !seen {
			result = cs
			seen = true
			continue
		}
		result = domain.MaxComponentStatus(result, cs)
	}

	return result, nil
}

// aggregateImpact prefers explicit overrides, taking the most severe one
// across the group. Without any override the impact is derived from the
// component status.
func aggregateImpact(alerts []Alert, componentStatus domain.ComponentStatus) (domain.Impact, error) {
	impact := domain.ImpactNone
	overridden := false

	for i := range alerts {
		v := alerts[i].annotation(AnnotationImpactOverride)
		if v == "" {
			continue
		}
		imp := domain.Impact(v)
		if !imp.Valid() {
			return "", domain.InvalidEnum(AnnotationImpactOverride, v)
		}
		if !overridden {
			impact = imp
			overridden = true
			continue
		}
		impact = domain.MaxImpact(impact, imp)
	}

	if !overridden {
		impact = componentStatus.DefaultImpact()
	}

	return impact, nil
}

func aggregateIncidentStatus(alerts []Alert) (domain.IncidentStatus, error) {
	result := domain.IncidentIdentified
	seen := false

	for i := range alerts {
		v := alerts[i].annotation(AnnotationIncidentStatus)
		if v == "" {
			continue
		}
		is := domain.IncidentStatus(v)
		if !is.Valid() {
			return "", domain.InvalidEnum(AnnotationIncidentStatus, v)
		}
		if !seen {
			result = is
			seen = true
			continue
		}
		result = domain.MaxIncidentStatus(result, is)
	}

	return result, nil
}

// buildSummary joins the distinct summaries of firing alerts.
func buildSummary(alerts []Alert) string {
	var summaries []string
	seen := make(map[string]struct{})

	for i := range alerts {
		if !alerts[i].firing() {
			continue
		}
		s := alerts[i].annotation(AnnotationSummary)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		summaries = append(summaries, s)
	}

	if len(summaries) == 0 {
		return fallbackSummary
	}
	return strings.Join(summaries, "\n")
}

func componentName(alerts []Alert, componentID string) string {
	for i := range alerts {
		if name := alerts[i].annotation(AnnotationComponentName); name != "" {
			return name
		}
	}
	return componentID
}
