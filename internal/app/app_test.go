package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/neox5/statbox/internal/client"
	"github.com/neox5/statbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
params:
  metric_prefix: custom_prefix
services:
  payments:
    - incNetaxeptRegistration_failed Netaxept registration failed
    - timSubscribeFailed Subscription failures
  auth:
    - decAuthorisationMissingSession
settings:
  internal_metrics:
    enabled: true
simulation:
  interval: 10ms
  traffic:
    - service: payments
      method: timSubscribeFailed
      min: 1
      max: 10
`

func parse(t *testing.T, data string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(data))
	require.NoError(t, err)
	return cfg
}

func TestNewPrometheus(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), parse(t, testConfig), Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	require.NotNil(t, a.PrometheusExporter)
	assert.Nil(t, a.OTELExporter)
	assert.NotNil(t, a.SelfMetrics)
	assert.Equal(t, 1, a.Generator.Len())
	assert.Len(t, a.Services, 2)

	prom, ok := a.Client.(*client.Prometheus)
	require.True(t, ok, "client is %T", a.Client)

	svc, err := a.Service("payments")
	require.NoError(t, err)
	require.NoError(t, svc.Invoke("incNetaxeptRegistration_failed"))

	families, err := prom.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "custom_prefix_netaxept_registration_failed_total")

	_, err = a.Service("billing")
	assert.EqualError(t, err, `unknown service "billing"`)
	assert.NoError(t, a.Close())
}

func TestNewDryRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a, err := New(context.Background(), parse(t, testConfig), Options{DryRun: true, Logger: logger})
	require.NoError(t, err)
	assert.Nil(t, a.PrometheusExporter)

	a.TouchAll()

	out := buf.String()
	assert.Contains(t, out, "name=auth methods=1")
	assert.Contains(t, out, "op=increment name=custom_prefix.authorisation.missing.session")
	assert.Contains(t, out, "op=decrement name=custom_prefix.subscribe.failed")
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	cfg := parse(t, testConfig)
	cfg.Settings.TouchOnStart = true

	a, err := New(context.Background(), cfg, Options{DryRun: true, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, a.Run(ctx))
}

func TestNewOneShot(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	_, err := New(context.Background(), parse(t, testConfig), Options{OneShot: true, Logger: logger})
	assert.ErrorIs(t, err, ErrPullExporter)

	a, err := New(context.Background(), parse(t, testConfig), Options{OneShot: true, DryRun: true, Logger: logger})
	require.NoError(t, err)
	assert.Nil(t, a.PrometheusExporter)

	otelConfig := testConfig + `
export:
  otel:
    enabled: true
    transport: http
`
	a, err = New(context.Background(), parse(t, otelConfig), Options{OneShot: true, Logger: logger})
	require.NoError(t, err)
	require.NotNil(t, a.OTELExporter)
}
