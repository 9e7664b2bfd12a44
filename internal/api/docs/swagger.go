package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// WebhookResponse documents a processed webhook delivery
type WebhookResponse struct {
	Outcome    string `json:"outcome" example:"created"`
	IncidentID string `json:"incident_id,omitempty" example:"p1k2j3h4g5f6"`
	GroupKey   string `json:"group_key" example:"p1/c1"`
}

// AlertPayload documents the Alertmanager webhook body (version 4)
type AlertPayload struct {
	Version  string  `json:"version" example:"4"`
	GroupKey string  `json:"groupKey" example:"{}:{alertname=\"APIDown\"}"`
	Status   string  `json:"status" example:"firing"`
	Receiver string  `json:"receiver" example:"statuspage"`
	Alerts   []Alert `json:"alerts"`
}

// Alert documents a single alert inside a grouped delivery
type Alert struct {
	Status      string            `json:"status" example:"firing"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
}

// HealthResponse documents the health probe body
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"MISSING_FIELD"`
	Message string `json:"message" example:"Payload is missing a required field"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Statusbridge API",
		Version:     "v1.0.0",
		Description: "Receives Alertmanager webhook deliveries and reconciles Statuspage incidents per component",
		Host:        "localhost:8080",
	})

	webhookEndpoint := func(path string) *endpoint.EndPoint {
		return endpoint.New(
			endpoint.POST,
			path,
			endpoint.WithTags("Webhook"),
			endpoint.WithSummary("Process an Alertmanager webhook delivery"),
			endpoint.WithDescription("Normalizes the grouped alerts into a single event and creates, updates or resolves the Statuspage incident for the targeted component."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(AlertPayload{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookResponse{}, "200", "Delivery processed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_FIELD", Message: "Payload is missing a required field"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing webhook token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "INVALID_ENUM", Message: "Payload contains an unrecognized enum value"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "STATUSPAGE_UNAVAILABLE", Message: "Statuspage API call failed, no state was committed"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "VERSION_CONFLICT", Message: "Concurrent reconciliation for the same group key, retry later"}, "503", "Service Unavailable"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		)
	}

	endpoints := []*endpoint.EndPoint{
		webhookEndpoint("/webhook/alertmanager"),
		webhookEndpoint("/alert"),

		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Checks database connectivity when a database is configured."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
