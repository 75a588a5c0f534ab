package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
	"alfredoptarigan/resume-assistant/internal/services"
)

const (
	fileField           = "file"
	resumeURLField      = "resume_url"
	jobDescriptionField = "job_description"
)

type EvaluationHandler struct {
	evaluator services.EvaluatorService
}

func NewEvaluationHandler(evaluator services.EvaluatorService) *EvaluationHandler {
	return &EvaluationHandler{evaluator: evaluator}
}

// HandleATSScore handles POST /api/v1/ats-score
func (h *EvaluationHandler) HandleATSScore(c *fiber.Ctx) error {
	return h.handle(c, models.TaskATSScore)
}

// HandleCoverLetter handles POST /api/v1/cover-letter
func (h *EvaluationHandler) HandleCoverLetter(c *fiber.Ctx) error {
	return h.handle(c, models.TaskCoverLetter)
}

// HandleResumeRewrite handles POST /api/v1/resume-rewrite
func (h *EvaluationHandler) HandleResumeRewrite(c *fiber.Ctx) error {
	return h.handle(c, models.TaskResumeRewrite)
}

func (h *EvaluationHandler) handle(c *fiber.Ctx, kind models.TaskKind) error {
	input, closeFn, err := parseEvaluationInput(c, kind)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := h.evaluator.Evaluate(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// parseEvaluationInput reads either a multipart upload or a JSON/form body
// carrying resume_url. Exactly one resume source must be present.
func parseEvaluationInput(c *fiber.Ctx, kind models.TaskKind) (models.EvaluationInput, func(), error) {
	noop := func() {}
	input := models.EvaluationInput{Kind: kind}

	var fileHeader *multipart.FileHeader
	var resumeURL string

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return input, noop, apperror.Wrap(apperror.KindInvalidRequest, "failed to parse multipart form", err)
		}
		if files := form.File[fileField]; len(files) > 0 {
			fileHeader = files[0]
		}
		resumeURL = firstValue(form.Value, resumeURLField)
		input.JobDescription = firstValue(form.Value, jobDescriptionField)
	} else if len(c.Body()) > 0 {
		var req models.ResumeURLRequest
		if err := c.BodyParser(&req); err != nil {
			return input, noop, apperror.Wrap(apperror.KindInvalidRequest, "invalid request payload", err)
		}
		resumeURL = strings.TrimSpace(req.ResumeURL)
		input.JobDescription = req.JobDescription
	}

	switch {
	case fileHeader != nil && resumeURL != "":
		return input, noop, apperror.New(apperror.KindInvalidRequest, "provide either a file upload or resume_url, not both")
	case fileHeader == nil && resumeURL == "":
		return input, noop, apperror.New(apperror.KindInvalidRequest, "a resume file or resume_url is required")
	case resumeURL != "":
		input.Source = models.RemoteURL{URL: resumeURL}
		return input, noop, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return input, noop, apperror.Wrap(apperror.KindInvalidRequest, "failed to read uploaded file", err)
	}
	input.Source = models.UploadedFile{Filename: fileHeader.Filename, Content: file}
	return input, func() { _ = file.Close() }, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
