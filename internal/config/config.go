package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database. Empty falls back to the in-memory store, which only suits
	// single-instance deployments.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Statuspage
	StatuspageAPIKey  string        `envconfig:"STATUSPAGE_API_KEY" required:"true"`
	StatuspageBaseURL string        `envconfig:"STATUSPAGE_BASE_URL" default:"https://api.statuspage.io/v1"`
	RemoteTimeout     time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`

	// Reconciliation
	StalenessTolerance time.Duration `envconfig:"STALENESS_TOLERANCE" default:"2m"`
	CASRetryCount      int           `envconfig:"CAS_RETRY_COUNT" default:"3"`
	TitleTemplate      string        `envconfig:"INCIDENT_TITLE_TEMPLATE" default:"{component_name} - Incident"`
	BodyTemplate       string        `envconfig:"INCIDENT_BODY_TEMPLATE" default:"{summary}"`

	// Retention. A zero RESOLVED_RETENTION keeps resolved records forever.
	ResolvedRetention time.Duration `envconfig:"RESOLVED_RETENTION" default:"168h"`
	JanitorInterval   time.Duration `envconfig:"JANITOR_INTERVAL" default:"1h"`

	// Security. Empty disables webhook auth.
	WebhookToken string `envconfig:"WEBHOOK_TOKEN"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
