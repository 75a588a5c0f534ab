package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObservations(t *testing.T) {
	m := New()

	m.ObserveEvaluation("ats_score", "ok")
	m.ObserveEvaluation("ats_score", "ok")
	m.ObserveEvaluation("cover_letter", "")
	m.ObserveStage("ats_score", "extract", 20*time.Millisecond)
	m.ObserveModelCall("gemini-2.5-flash", "model_unavailable", time.Second)

	body := scrape(t, m)

	assert.Contains(t, body, `resume_evaluations_total{outcome="ok",task="ats_score"} 2`)
	assert.Contains(t, body, `resume_evaluations_total{outcome="unknown",task="cover_letter"} 1`)
	assert.Contains(t, body, `resume_stage_duration_seconds_count{stage="extract",task="ats_score"} 1`)
	assert.Contains(t, body, `resume_model_calls_total{model="gemini-2.5-flash",outcome="model_unavailable"} 1`)
	assert.Contains(t, body, `resume_model_call_duration_seconds_count{model="gemini-2.5-flash"} 1`)
}

func TestMiddleware_RecordsRouteTemplateAndErrorStatus(t *testing.T) {
	m := New()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString(err.Error())
		},
	})
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/broken", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "boom", string(body))

	metricsBody := scrape(t, m)
	assert.Contains(t, metricsBody, `resume_http_requests_total{method="GET",path="/items/:id",status="200"} 1`)
	assert.Contains(t, metricsBody, `resume_http_requests_total{method="GET",path="/broken",status="418"} 1`)
	assert.Contains(t, metricsBody, `resume_http_in_flight_requests 0`)
}

func TestMiddleware_MethodLabelSurvivesLaterRequests(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Post("/api/v1/ats-score", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadRequest)
	})
	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/ats-score", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `resume_http_requests_total{method="POST",path="/api/v1/ats-score",status="400"} 2`)
	assert.Contains(t, body, `resume_http_requests_total{method="GET",path="/api/v1/health",status="200"} 2`)
	assert.Contains(t, body, `resume_http_request_duration_seconds_count{method="POST",path="/api/v1/ats-score"} 2`)
	assert.NotContains(t, body, `method="GETT"`)
}

func TestMiddleware_RecordsPanicsAsServerErrors(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(recover.New())
	app.Use(m.Middleware())
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("handler exploded")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := scrape(t, m)
	assert.Contains(t, body, `resume_http_requests_total{method="GET",path="/panic",status="500"} 1`)
	assert.Contains(t, body, `resume_http_in_flight_requests 0`)
}
