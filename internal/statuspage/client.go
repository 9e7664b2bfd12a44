package statuspage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resolvedBody = "All alerts have been resolved."

// Config holds the configuration for the Statuspage client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL: "https://api.statuspage.io/v1",
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	}
}

// Client is the HTTP client for the Statuspage v1 API. It performs no
// retries of its own: retry policy belongs to the webhook sender.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new Statuspage client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig(config.APIKey).BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig(config.APIKey).Timeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// incidentEnvelope is the request wrapper the API expects.
type incidentEnvelope struct {
	Incident incidentBody `json:"incident"`
}

type incidentBody struct {
	Name           string            `json:"name,omitempty"`
	Body           string            `json:"body,omitempty"`
	Status         string            `json:"status,omitempty"`
	ImpactOverride string            `json:"impact_override,omitempty"`
	ComponentIDs   []string          `json:"component_ids,omitempty"`
	Components     map[string]string `json:"components,omitempty"`
}

func (c *Client) CreateIncident(ctx context.Context, req CreateIncidentRequest) (string, error) {
	payload := incidentEnvelope{
		Incident: incidentBody{
			Name:           req.Name,
			Body:           req.Body,
			Status:         string(req.Status),
			ImpactOverride: string(req.Impact),
			ComponentIDs:   []string{req.ComponentID},
			Components: map[string]string{
				req.ComponentID: string(req.ComponentStatus),
			},
		},
	}

	var incident Incident
	path := fmt.Sprintf("/pages/%s/incidents.json", req.PageID)
	if err := c.doRequest(ctx, http.MethodPost, path, payload, &incident); err != nil {
		return "", err
	}
	if incident.ID == "" {
		return "", fmt.Errorf("%w: created incident has no id", ErrInvalidResponse)
	}

	return incident.ID, nil
}

func (c *Client) UpdateIncident(ctx context.Context, pageID, incidentID string, req UpdateIncidentRequest) error {
	payload := incidentEnvelope{
		Incident: incidentBody{
			Body:           req.Body,
			Status:         string(req.Status),
			ImpactOverride: string(req.Impact),
			Components: map[string]string{
				req.ComponentID: string(req.ComponentStatus),
			},
		},
	}

	path := fmt.Sprintf("/pages/%s/incidents/%s.json", pageID, incidentID)
	return c.doRequest(ctx, http.MethodPatch, path, payload, nil)
}

func (c *Client) ResolveIncident(ctx context.Context, pageID, incidentID, componentID string) error {
	payload := incidentEnvelope{
		Incident: incidentBody{
			Status: "resolved",
			Body:   resolvedBody,
			Components: map[string]string{
				componentID: "operational",
			},
		},
	}

	path := fmt.Sprintf("/pages/%s/incidents/%s.json", pageID, incidentID)
	return c.doRequest(ctx, http.MethodPatch, path, payload, nil)
}

func (c *Client) GetIncident(ctx context.Context, pageID, incidentID string) (*Incident, error) {
	var incident Incident
	path := fmt.Sprintf("/pages/%s/incidents/%s.json", pageID, incidentID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

// UnresolvedIncidents fetches all open incidents for a page.
func (c *Client) UnresolvedIncidents(ctx context.Context, pageID string) ([]Incident, error) {
	var incidents []Incident
	path := fmt.Sprintf("/pages/%s/incidents/unresolved.json", pageID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (c *Client) FindIncidentForComponent(ctx context.Context, pageID, componentID string) (*Incident, error) {
	incidents, err := c.UnresolvedIncidents(ctx, pageID)
	if err != nil {
		return nil, err
	}

	for i := range incidents {
		if incidents[i].AffectsComponent(componentID) {
			return &incidents[i], nil
		}
	}

	return nil, nil
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "OAuth "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
