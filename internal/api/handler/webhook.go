package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/alert"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/reconcile"
)

// Reconciler applies a normalized alert group event.
type Reconciler interface {
	Reconcile(ctx context.Context, event *domain.AlertGroupEvent) (*reconcile.Result, error)
}

type WebhookHandler struct {
	reconciler Reconciler
	logger     *slog.Logger
	now        func() time.Time
}

func NewWebhookHandler(reconciler Reconciler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

// WebhookResponse is returned for every accepted webhook delivery.
type WebhookResponse struct {
	Outcome    string `json:"outcome"`
	IncidentID string `json:"incident_id,omitempty"`
	GroupKey   string `json:"group_key"`
}

// HandleAlertmanager receives an Alertmanager webhook payload, normalizes
// it and reconciles the resulting event.
func (h *WebhookHandler) HandleAlertmanager(c *fiber.Ctx) error {
	var payload alert.Payload
	if err := c.BodyParser(&payload); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	event, err := alert.Normalize(&payload, h.now().UTC())
	if err != nil {
		return err
	}

	h.logger.Debug("webhook received",
		slog.String("group_key", event.GroupKey),
		slog.String("status", string(event.Status)),
	)

	result, err := h.reconciler.Reconcile(c.Context(), event)
	if err != nil {
		return err
	}

	return c.JSON(WebhookResponse{
		Outcome:    string(result.Outcome),
		IncidentID: result.IncidentID,
		GroupKey:   event.GroupKey,
	})
}
