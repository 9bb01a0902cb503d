package exporter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neox5/statbox/internal/client"
	"github.com/neox5/statbox/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func newTestPrometheusClient(t *testing.T) *client.Prometheus {
	t.Helper()

	c, err := client.NewPrometheus(client.PrometheusOptions{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	return c
}

func TestPrometheusExporterServesClientMetrics(t *testing.T) {
	t.Parallel()

	c := newTestPrometheusClient(t)
	c.Increment("custom_prefix.netaxept.registration_failed")

	cfg := &config.PrometheusExportConfig{Enabled: true, Port: 9090, Path: "/metrics"}
	e, err := NewPrometheusExporter(cfg, c.Registry(), false)
	require.NoError(t, err)

	code, body := scrape(t, e.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "custom_prefix_netaxept_registration_failed_total 1")
	assert.NotContains(t, body, "promhttp_metric_handler_requests_total")

	code, _ = scrape(t, e.Handler(), "/other")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPrometheusExporterInternalMetrics(t *testing.T) {
	t.Parallel()

	c := newTestPrometheusClient(t)
	cfg := &config.PrometheusExportConfig{Enabled: true, Port: 9090, Path: "/probe"}
	e, err := NewPrometheusExporter(cfg, c.Registry(), true)
	require.NoError(t, err)

	_, _ = scrape(t, e.Handler(), "/probe")
	code, body := scrape(t, e.Handler(), "/probe")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "promhttp_metric_handler_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestPrometheusExporterStartStop(t *testing.T) {
	t.Parallel()

	c := newTestPrometheusClient(t)
	cfg := &config.PrometheusExportConfig{Enabled: true, Port: 0, Path: "/metrics"}
	e, err := NewPrometheusExporter(cfg, c.Registry(), false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}

func TestPrometheusExporterServesPartialScrape(t *testing.T) {
	t.Parallel()

	c := newTestPrometheusClient(t)
	c.Timing("app.foo", 10)
	c.Increment("app.ok")

	// Registered outside the client, so the client cannot refuse it.
	clash := prometheus.NewGauge(prometheus.GaugeOpts{Name: "app_foo_count", Help: "clashes with app_foo"})
	clash.Set(3)
	require.NoError(t, c.Registry().Register(clash))

	_, err := c.Registry().Gather()
	require.Error(t, err)

	cfg := &config.PrometheusExportConfig{Enabled: true, Port: 9090, Path: "/metrics"}
	e, err := NewPrometheusExporter(cfg, c.Registry(), false)
	require.NoError(t, err)

	code, body := scrape(t, e.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "app_ok_total 1")
}
