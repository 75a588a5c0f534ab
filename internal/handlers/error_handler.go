package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
)

// ErrorHandler renders every error as models.ErrorResponse. Classified
// errors use their kind's stable message and status; fiber errors keep
// their own code.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := errorResponse(err)

		attrs := []any{
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", resp.Code,
			"kind", resp.Kind,
		}
		if resp.Code >= fiber.StatusInternalServerError {
			logger.Error("request_failed", append(attrs, "error", err.Error())...)
		} else {
			logger.Info("request_rejected", append(attrs, "error", err.Error())...)
		}

		return c.Status(resp.Code).JSON(resp)
	}
}

func errorResponse(err error) models.ErrorResponse {
	if appErr, ok := apperror.As(err); ok {
		return models.ErrorResponse{
			Error:     appErr.Message(),
			Kind:      string(appErr.Kind),
			Details:   appErr.Detail,
			Retryable: appErr.Retryable(),
			Code:      appErr.Status(),
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := apperror.KindInvalidRequest
		switch {
		case fiberErr.Code == fiber.StatusRequestEntityTooLarge:
			kind = apperror.KindPayloadTooLarge
		case fiberErr.Code >= fiber.StatusInternalServerError:
			kind = apperror.KindInternal
		}
		return models.ErrorResponse{
			Error: fiberErr.Message,
			Kind:  string(kind),
			Code:  fiberErr.Code,
		}
	}

	return models.ErrorResponse{
		Error: apperror.KindInternal.Message(),
		Kind:  string(apperror.KindInternal),
		Code:  fiber.StatusInternalServerError,
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
