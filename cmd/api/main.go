package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"alfredoptarigan/resume-assistant/internal/config"
	"alfredoptarigan/resume-assistant/internal/handlers"
	"alfredoptarigan/resume-assistant/internal/metrics"
	"alfredoptarigan/resume-assistant/internal/services"
)

const (
	serviceName     = "resume-assistant"
	formOverhead    = 1 << 20
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.NewLogger(serviceName, cfg.Server.LogLevel)
	slog.SetDefault(log)
	log.Info("config_loaded", "env", cfg.Server.Env, "model", cfg.Gemini.Model, "gemini_configured", cfg.GeminiConfigured())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.New()

	// Initialize services
	resolver := services.NewSourceResolver(&http.Client{}, cfg.Document.MaxFileSize, cfg.Document.DownloadTimeout)
	extractor := services.NewTextExtractor()

	var generator services.TextGenerator
	if cfg.GeminiConfigured() {
		client, err := services.NewGeminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			log.Error("gemini_init_failed", "error", err.Error())
			os.Exit(1)
		}
		generator = client
		log.Info("gemini_initialized", "model", cfg.Gemini.Model)
	} else {
		generator = services.NewUnconfiguredGenerator()
		log.Warn("gemini_not_configured", "hint", "set GEMINI_API_KEY to enable evaluation endpoints")
	}

	orchestrator := services.NewPromptOrchestrator(generator, cfg.Gemini, cfg.Breaker, appMetrics, log)
	evaluator := services.NewEvaluatorService(resolver, extractor, orchestrator, cfg.Document, appMetrics, log)

	// Initialize handlers
	evaluationHandler := handlers.NewEvaluationHandler(evaluator)
	healthHandler := handlers.NewHealthHandler(cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Assistant API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    int(cfg.Document.MaxFileSize + formOverhead),
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(appMetrics.Middleware())

	handlers.RegisterRoutes(app, evaluationHandler, healthHandler, appMetrics.Handler())

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("shutting_down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("forced_shutdown", "error", err.Error())
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server_starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
