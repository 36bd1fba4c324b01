package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/api/http/handlers"
	"github.com/TaniaLee11/opsflow-circle-sub004/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Escalations     *handlers.EscalationsHandler
	Tickets         *handlers.TicketsHandler
	SchedulerSecret string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	escalations := api.Group("/escalations")
	escalations.Post("/", cfg.Escalations.Create)
	escalations.Post("/accept", cfg.Escalations.Accept)
	escalations.Get("/", cfg.Escalations.List)
	escalations.Post("/followup", auth.RequireSchedulerSecret(cfg.SchedulerSecret), cfg.Escalations.RunFollowup)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
}
