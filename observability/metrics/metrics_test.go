package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"app": "demo"}))

	c.RecordResolution("resolved")
	c.RecordResolution("resolved")
	c.RecordResolution("handler_not_found")
	c.RecordDispatch("WidgetsController", "ActionShow", 200, 15*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, 200, time.Millisecond)
	c.RecordInvalidation()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.resolutions.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues("handler_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.invalidations))

	expected := `
# HELP test_resolutions_total URI resolutions by outcome
# TYPE test_resolutions_total counter
test_resolutions_total{app="demo",outcome="handler_not_found"} 1
test_resolutions_total{app="demo",outcome="resolved"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_resolutions_total"))

	count, err := testutil.GatherAndCount(reg, "test_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusCollector(WithRegistry(reg))
	assert.Panics(t, func() { NewPrometheusCollector(WithRegistry(reg)) })

	// A subsystem makes the names distinct
	assert.NotPanics(t, func() { NewPrometheusCollector(WithRegistry(reg), WithSubsystem("second")) })
}

func TestMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(WithRegistry(reg))

	e := echo.New()
	e.Use(Middleware(c))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/teapot", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	for _, path := range []string{"/ok", "/ok", "/teapot"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "418")))
}

func TestNoOpCollector(t *testing.T) {
	var c Collector = NoOpCollector{}
	c.RecordResolution("resolved")
	c.RecordDispatch("h", "m", 200, time.Second)
	c.RecordHTTPRequest(http.MethodGet, 200, time.Second)
	c.RecordInvalidation()
}
