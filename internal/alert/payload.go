package alert

import "time"

// Label and annotation keys recognized on inbound Alertmanager payloads.
const (
	LabelRouting     = "statuspage"
	LabelPageID      = "statuspagePageId"
	LabelComponentID = "statuspageComponentId"

	AnnotationComponentName   = "statuspageComponentName"
	AnnotationImpactOverride  = "statuspageImpactOverride"
	AnnotationComponentStatus = "statuspageComponentStatus"
	AnnotationIncidentStatus  = "statuspageStatus"
	AnnotationSummary         = "statuspageSummary"
)

// Payload is the Alertmanager webhook wire format (version 4).
type Payload struct {
	Version           string            `json:"version"`
	GroupKey          string            `json:"groupKey"`
	TruncatedAlerts   int               `json:"truncatedAlerts"`
	Status            string            `json:"status"`
	Receiver          string            `json:"receiver"`
	GroupLabels       map[string]string `json:"groupLabels"`
	CommonLabels      map[string]string `json:"commonLabels"`
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`
	Alerts            []Alert           `json:"alerts"`
}

// Alert is a single alert inside a grouped delivery.
type Alert struct {
	Status       string            `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     time.Time         `json:"startsAt"`
	EndsAt       time.Time         `json:"endsAt"`
	GeneratorURL string            `json:"generatorURL"`
	Fingerprint  string            `json:"fingerprint"`
}

func (a *Alert) firing() bool {
	return a.Status == "firing"
}

// eligible reports whether the alert participates in status page routing.
// Alerts explicitly opted out with statuspage="false" are skipped during
// aggregation.
func (a *Alert) eligible() bool {
	return a.Labels[LabelRouting] != "false"
}

func (a *Alert) annotation(key string) string {
	return a.Annotations[key]
}
