package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	origReg := prometheus.DefaultRegisterer
	origGather := prometheus.DefaultGatherer
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGather
	})
	return reg
}

func findMetric(families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m
			}
		}
	}
	return nil
}

func TestProm_Generation(t *testing.T) {
	reg := withTestRegistry(t)
	p := NewProm("darslik")

	p.ObserveGeneration("lesson", "success", 2*time.Second)
	p.ObserveGeneration("lesson", "success", time.Second)
	p.ObserveGeneration("quiz", "failure", time.Second)
	p.ObserveLesson("skipped")

	families, err := reg.Gather()
	require.NoError(t, err)

	m := findMetric(families, "darslik_generations_total", map[string]string{"kind": "lesson", "outcome": "success"})
	require.NotNil(t, m)
	assert.Equal(t, 2.0, m.GetCounter().GetValue())

	m = findMetric(families, "darslik_generation_duration_seconds", map[string]string{"kind": "lesson"})
	require.NotNil(t, m)
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())

	assert.NotNil(t, findMetric(families, "darslik_generations_total", map[string]string{"kind": "quiz", "outcome": "failure"}))
	assert.NotNil(t, findMetric(families, "darslik_lesson_generations_total", map[string]string{"status": "skipped"}))
}

func TestProm_Middleware(t *testing.T) {
	reg := withTestRegistry(t)
	p := NewProm("darslik")

	e := echo.New()
	e.Use(p.Middleware())
	e.GET("/api/courses/:id", func(ctx echo.Context) error {
		return ctx.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/42", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	labels := map[string]string{"method": "GET", "route": "/api/courses/:id", "status": "204"}
	assert.NotNil(t, findMetric(families, "darslik_http_requests_total", labels))
}
