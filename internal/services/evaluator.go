package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/config"
	"alfredoptarigan/resume-assistant/internal/models"
)

// Pipeline stage names used in logs and metrics.
const (
	StageResolve  = "resolve"
	StageExtract  = "extract"
	StageGenerate = "generate"
	StageParse    = "parse"
)

// PipelineRecorder receives per-stage and per-evaluation observations.
type PipelineRecorder interface {
	ObserveStage(task, stage string, duration time.Duration)
	ObserveEvaluation(task, outcome string)
}

type EvaluatorService interface {
	Evaluate(ctx context.Context, input models.EvaluationInput) (models.Result, error)
}

type evaluatorService struct {
	resolver     SourceResolver
	extractor    TextExtractor
	orchestrator PromptOrchestrator
	docCfg       config.DocumentConfig
	recorder     PipelineRecorder
	logger       *slog.Logger
}

func NewEvaluatorService(
	resolver SourceResolver,
	extractor TextExtractor,
	orchestrator PromptOrchestrator,
	docCfg config.DocumentConfig,
	recorder PipelineRecorder,
	logger *slog.Logger,
) EvaluatorService {
	return &evaluatorService{
		resolver:     resolver,
		extractor:    extractor,
		orchestrator: orchestrator,
		docCfg:       docCfg,
		recorder:     recorder,
		logger:       logger,
	}
}

// Evaluate runs resolve, extract, generate and parse for one request. The
// input is validated before any download starts.
func (e *evaluatorService) Evaluate(ctx context.Context, input models.EvaluationInput) (result models.Result, err error) {
	evalID := uuid.New().String()
	logger := e.logger.With("evaluation_id", evalID, "task", string(input.Kind))
	start := time.Now()

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperror.KindOf(err))
			logger.Warn("evaluation_failed", "kind", outcome, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		} else {
			logger.Info("evaluation_completed", "duration_ms", time.Since(start).Milliseconds())
		}
		if e.recorder != nil {
			e.recorder.ObserveEvaluation(string(input.Kind), outcome)
		}
	}()

	if err := e.validate(input); err != nil {
		return nil, err
	}

	logger.Info("evaluation_started")

	var doc *models.RawDocument
	err = e.stage(logger, input.Kind, StageResolve, func() error {
		var stageErr error
		doc, stageErr = e.resolver.Resolve(ctx, input.Source)
		return stageErr
	})
	if err != nil {
		return nil, err
	}
	logger.Info("document_resolved", "filename", doc.Filename, "format", string(doc.Format), "size_bytes", doc.SizeBytes)

	var extracted *models.ExtractedText
	err = e.stage(logger, input.Kind, StageExtract, func() error {
		var stageErr error
		extracted, stageErr = e.extractor.Extract(doc)
		return stageErr
	})
	if err != nil {
		return nil, err
	}
	logger.Info("text_extracted", "format", string(extracted.Format), "chars", extracted.CharCount)

	if n := meaningfulChars(extracted.Text); n < e.docCfg.MinResumeChars {
		return nil, apperror.Newf(apperror.KindExtractionFailed,
			"could not extract sufficient text from the resume (%d characters)", n)
	}

	task := models.NewTask(input.Kind, extracted.Text, strings.TrimSpace(input.JobDescription))

	var resp *models.ModelResponse
	err = e.stage(logger, input.Kind, StageGenerate, func() error {
		var stageErr error
		resp, stageErr = e.orchestrator.Generate(ctx, task)
		return stageErr
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(logger, input.Kind, StageParse, func() error {
		var stageErr error
		result, stageErr = ParseResponse(input.Kind, resp, doc.Format)
		return stageErr
	})
	if err != nil {
		logger.Debug("unparseable_model_output", "raw_chars", len(resp.RawText))
		return nil, err
	}

	return result, nil
}

func (e *evaluatorService) validate(input models.EvaluationInput) error {
	if !input.Kind.Valid() {
		return apperror.Newf(apperror.KindInvalidRequest, "unknown task %q", input.Kind)
	}
	if input.Source == nil {
		return apperror.New(apperror.KindInvalidRequest, "a resume file or resume_url is required")
	}
	if input.Kind == models.TaskCoverLetter {
		jd := strings.TrimSpace(input.JobDescription)
		if jd == "" {
			return apperror.New(apperror.KindInvalidRequest, "job_description is required")
		}
		if n := meaningfulChars(jd); n < e.docCfg.MinJobDescriptionChars {
			return apperror.New(apperror.KindInvalidRequest,
				fmt.Sprintf("job_description is too short (%d characters, minimum %d)", n, e.docCfg.MinJobDescriptionChars))
		}
	}
	return nil
}

func (e *evaluatorService) stage(logger *slog.Logger, kind models.TaskKind, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		logger.Info("stage_failed", "stage", name, "kind", string(apperror.KindOf(err)), "duration_ms", duration.Milliseconds())
	} else {
		logger.Debug("stage_finished", "stage", name, "duration_ms", duration.Milliseconds())
	}
	if e.recorder != nil {
		e.recorder.ObserveStage(string(kind), name, duration)
	}
	return err
}

// meaningfulChars counts non-whitespace runes.
func meaningfulChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
