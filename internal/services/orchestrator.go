package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/config"
	"alfredoptarigan/resume-assistant/internal/models"
)

// ModelCallRecorder receives one observation per model call.
type ModelCallRecorder interface {
	ObserveModelCall(model, outcome string, duration time.Duration)
}

type PromptOrchestrator interface {
	Generate(ctx context.Context, task models.Task) (*models.ModelResponse, error)
}

type promptOrchestrator struct {
	generator       TextGenerator
	promptBuilder   *PromptBuilder
	model           string
	maxOutputTokens int32
	requestTimeout  time.Duration
	breaker         *gobreaker.CircuitBreaker[string]
	recorder        ModelCallRecorder
	logger          *slog.Logger
}

func NewPromptOrchestrator(
	generator TextGenerator,
	geminiCfg config.GeminiConfig,
	breakerCfg config.BreakerConfig,
	recorder ModelCallRecorder,
	logger *slog.Logger,
) PromptOrchestrator {
	o := &promptOrchestrator{
		generator:       generator,
		promptBuilder:   NewPromptBuilder(),
		model:           geminiCfg.Model,
		maxOutputTokens: geminiCfg.MaxOutputTokens,
		requestTimeout:  geminiCfg.RequestTimeout,
		recorder:        recorder,
		logger:          logger,
	}
	if breakerCfg.Enabled {
		o.breaker = newModelBreaker(geminiCfg.Model, breakerCfg, logger)
	}
	return o
}

func newModelBreaker(name string, cfg config.BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		// Only provider-side failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperror.Is(err, apperror.KindModelUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change", "model", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}

// Generate performs exactly one model call for task.
func (o *promptOrchestrator) Generate(ctx context.Context, task models.Task) (*models.ModelResponse, error) {
	prompt, err := o.promptBuilder.Build(task)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidRequest, "unknown task", err)
	}

	req := GenerationRequest{
		Model:           o.model,
		Prompt:          prompt,
		Temperature:     temperatureFor(task.Kind()),
		MaxOutputTokens: o.maxOutputTokens,
		JSONOutput:      true,
	}

	o.logger.Debug("model_call_started", "task", task.Kind(), "model", o.model, "prompt_chars", len(prompt))

	start := time.Now()
	text, err := o.call(ctx, req)
	duration := time.Since(start)

	if err != nil {
		err = o.classify(ctx, err)
		o.observe(string(apperror.KindOf(err)), duration)
		return nil, err
	}
	o.observe("ok", duration)

	o.logger.Debug("model_call_finished", "task", task.Kind(), "model", o.model, "response_chars", len(text))

	return &models.ModelResponse{
		RawText:   text,
		ModelName: o.model,
	}, nil
}

func (o *promptOrchestrator) call(ctx context.Context, req GenerationRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	if o.breaker == nil {
		return o.generate(callCtx, req)
	}
	return o.breaker.Execute(func() (string, error) {
		return o.generate(callCtx, req)
	})
}

func (o *promptOrchestrator) generate(ctx context.Context, req GenerationRequest) (string, error) {
	text, err := o.generator.GenerateText(ctx, req)
	if err != nil {
		return "", o.classify(ctx, err)
	}
	return text, nil
}

// classify maps any generator or breaker error into the taxonomy.
func (o *promptOrchestrator) classify(ctx context.Context, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperror.Wrap(apperror.KindModelUnavailable, "model temporarily disabled after repeated failures", err)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindModelUnavailable,
			fmt.Sprintf("model did not respond within %s", o.requestTimeout), err)
	}
	if errors.Is(err, context.Canceled) {
		return apperror.Wrap(apperror.KindModelUnavailable, "model call cancelled by caller", err)
	}
	return apperror.Wrap(apperror.KindModelUnavailable, "model call failed", err)
}

func (o *promptOrchestrator) observe(outcome string, duration time.Duration) {
	if o.recorder != nil {
		o.recorder.ObserveModelCall(o.model, outcome, duration)
	}
}
