package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume"

type Metrics struct {
	registry *prometheus.Registry

	requestTotal      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestInFlight   prometheus.Gauge
	evaluationsTotal  *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	modelCallsTotal   *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	evaluationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Completed evaluations by task and outcome kind.",
		},
		[]string{"task", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task", "stage"},
	)
	modelCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model calls by model and outcome.",
		},
		[]string{"model", "outcome"},
	)
	modelCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		evaluationsTotal,
		stageDuration,
		modelCallsTotal,
		modelCallDuration,
	)

	return &Metrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		evaluationsTotal:  evaluationsTotal,
		stageDuration:     stageDuration,
		modelCallsTotal:   modelCallsTotal,
		modelCallDuration: modelCallDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by route template.
// Errors are rendered through the app error handler first so the recorded
// status matches the response. Panics are recorded as 500 and re-raised
// for the recover middleware.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		defer func() {
			if r := recover(); r != nil {
				m.observeRequest(c, fiber.StatusInternalServerError, start)
				panic(r)
			}
		}()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		m.observeRequest(c, c.Response().StatusCode(), start)
		return nil
	}
}

// observeRequest copies method and path out of the request buffer, which
// fasthttp reuses once the handler returns.
func (m *Metrics) observeRequest(c *fiber.Ctx, status int, start time.Time) {
	method := utils.CopyString(c.Method())
	path := utils.CopyString(c.Route().Path)

	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveEvaluation(task, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.evaluationsTotal.WithLabelValues(task, outcome).Inc()
}

func (m *Metrics) ObserveStage(task, stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(task, stage).Observe(duration.Seconds())
}

func (m *Metrics) ObserveModelCall(model, outcome string, duration time.Duration) {
	if model == "" {
		model = "unknown"
	}
	m.modelCallsTotal.WithLabelValues(model, outcome).Inc()
	m.modelCallDuration.WithLabelValues(model).Observe(duration.Seconds())
}
