package exporter

import (
	"context"
	"testing"

	"github.com/neox5/statbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestCreateOTELResource(t *testing.T) {
	t.Parallel()

	res, err := createOTELResource(context.Background(), map[string]string{
		"service.name":    "statbox",
		"service.version": "dev",
	})
	require.NoError(t, err)

	set := res.Set()
	name, ok := set.Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "statbox", name.AsString())

	version, ok := set.Value(attribute.Key("service.version"))
	require.True(t, ok)
	assert.Equal(t, "dev", version.AsString())
}

func TestCreateMetricExporter(t *testing.T) {
	t.Parallel()

	for _, transport := range []string{"grpc", "http"} {
		t.Run(transport, func(t *testing.T) {
			t.Parallel()

			cfg := &config.OTELExportConfig{Enabled: true, Transport: transport}
			require.NoError(t, cfg.Validate())

			exporter, err := createMetricExporter(context.Background(), cfg)
			require.NoError(t, err)
			assert.NotNil(t, exporter)
		})
	}

	_, err := createMetricExporter(context.Background(), &config.OTELExportConfig{Transport: "udp"})
	assert.EqualError(t, err, "unsupported transport: udp")
}

func TestNewOTELExporter(t *testing.T) {
	t.Parallel()

	cfg := &config.OTELExportConfig{Enabled: true, Transport: "http"}
	require.NoError(t, cfg.Validate())

	e, err := NewOTELExporter(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, e.Meter())

	counter, err := e.Meter().Float64UpDownCounter("statbox.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
