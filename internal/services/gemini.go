package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"alfredoptarigan/resume-assistant/internal/apperror"
)

// GenerationRequest is a single prompt sent to the model.
type GenerationRequest struct {
	Model           string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	JSONOutput      bool
}

// TextGenerator is the outbound port to a generative model.
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerationRequest) (string, error)
}

type geminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (TextGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiClient{client: client}, nil
}

// GenerateText implements TextGenerator.
func (g *geminiClient) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil {
		return "", apperror.New(apperror.KindMalformedModelOutput, "no response generated (nil response)")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := "no text content in response"
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
			reason = fmt.Sprintf("%s (finish reason %s)", reason, resp.Candidates[0].FinishReason)
		}
		return "", apperror.New(apperror.KindMalformedModelOutput, reason)
	}

	return text, nil
}

func classifyGeminiError(err error) error {
	code, status, ok := geminiAPIError(err)
	if !ok {
		return apperror.Wrap(apperror.KindModelUnavailable, "gemini request failed", err)
	}

	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return apperror.RateLimited("gemini quota or rate limit exceeded", err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		status == "UNAUTHENTICATED" || status == "PERMISSION_DENIED":
		return apperror.Wrap(apperror.KindModelUnavailable, "gemini rejected the API key; check its permissions", err)
	default:
		return apperror.Wrap(apperror.KindModelUnavailable, fmt.Sprintf("gemini API error (HTTP %d)", code), err)
	}
}

func geminiAPIError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}

type unconfiguredGenerator struct{}

// NewUnconfiguredGenerator returns a TextGenerator that always reports the
// model as unavailable; used when no API key is set.
func NewUnconfiguredGenerator() TextGenerator {
	return unconfiguredGenerator{}
}

func (unconfiguredGenerator) GenerateText(context.Context, GenerationRequest) (string, error) {
	return "", apperror.New(apperror.KindModelUnavailable,
		"Gemini API is not configured. Please set GEMINI_API_KEY in environment variables.")
}
