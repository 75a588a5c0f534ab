package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-assistant/internal/config"
	"alfredoptarigan/resume-assistant/internal/models"
)

const (
	serviceName    = "Resume Assistant API"
	serviceVersion = "1.0.0"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HandleHealth handles GET /api/v1/health and the legacy GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:           "healthy",
		GeminiConfigured: h.cfg.GeminiConfigured(),
		Model:            h.cfg.Gemini.Model,
		Time:             time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": serviceName,
		"version": serviceVersion,
		"endpoints": []string{
			"POST /api/v1/ats-score",
			"POST /api/v1/cover-letter",
			"POST /api/v1/resume-rewrite",
			"GET /api/v1/health",
			"GET /metrics",
		},
	})
}
