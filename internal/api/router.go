package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/api/middleware"
)

type Dependencies struct {
	Reconciler handler.Reconciler

	// DB is nil when running on the in-memory store.
	DB *pgxpool.Pool

	// WebhookToken guards the webhook endpoints, empty disables auth.
	WebhookToken string
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Statusbridge API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var pinger handler.Pinger
	if r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	webhookHandler := handler.NewWebhookHandler(r.deps.Reconciler, r.logger)

	auth := middleware.Auth(r.deps.WebhookToken)
	r.app.Post("/webhook/alertmanager", auth, webhookHandler.HandleAlertmanager)

	// legacy path kept for senders configured against older deployments
	r.app.Post("/alert", auth, webhookHandler.HandleAlertmanager)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
