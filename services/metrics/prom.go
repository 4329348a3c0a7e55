// Package metricsvc exposes the app metrics to Prometheus.
package metricsvc

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/darslik/core/generation"
)

// Prom implements generation.Metrics and the HTTP request metrics.
type Prom struct {
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	lessons     *prometheus.CounterVec
	requests    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
	once        sync.Once
}

var _ generation.Metrics = (*Prom)(nil)

func NewProm(namespace string) *Prom {
	p := &Prom{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Model calls by kind and outcome",
		}, []string{"kind", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Model call latency by kind",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"kind"}),
		lessons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lesson_generations_total",
			Help:      "Lessons processed by course generation, by status",
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.generations, p.latency, p.lessons, p.requests, p.reqLatency)
	})
}

func (p *Prom) ObserveGeneration(kind, outcome string, elapsed time.Duration) {
	p.generations.WithLabelValues(kind, outcome).Inc()
	p.latency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (p *Prom) ObserveLesson(status string) {
	p.lessons.WithLabelValues(status).Inc()
}

func (p *Prom) ObserveRequest(method, route, status string, elapsed time.Duration) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.reqLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Middleware records every request under its route pattern.
func (p *Prom) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			p.ObserveRequest(ctx.Request().Method, route, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}

// Handler returns an HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
