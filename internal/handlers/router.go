package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RegisterRoutes mounts the API, the legacy endpoint paths and /metrics.
func RegisterRoutes(app *fiber.App, evaluation *EvaluationHandler, health *HealthHandler, metricsHandler http.Handler) {
	api := app.Group("/api/v1")

	api.Get("/health", health.HandleHealth)
	api.Post("/ats-score", evaluation.HandleATSScore)
	api.Post("/cover-letter", evaluation.HandleCoverLetter)
	api.Post("/resume-rewrite", evaluation.HandleResumeRewrite)

	app.Get("/health", health.HandleHealth)
	app.Post("/resume_ats_score", evaluation.HandleATSScore)
	app.Post("/cover_letter_generator", evaluation.HandleCoverLetter)
	app.Post("/ats_resume_generator", evaluation.HandleResumeRewrite)

	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	app.Get("/", health.HandleRoot)
}
