package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/statbox/internal/config"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of meters handed to clients.
const MeterName = "github.com/neox5/statbox"

// OTELExporter pushes metrics to an OTEL collector.
type OTELExporter struct {
	config        *config.OTELExportConfig
	meterProvider *sdkmetric.MeterProvider
	meter         otelmetric.Meter
}

// NewOTELExporter creates a new OTEL exporter. The connection to the
// collector is established lazily on the first push.
func NewOTELExporter(ctx context.Context, cfg *config.OTELExportConfig) (*OTELExporter, error) {
	res, err := createOTELResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	exporter, err := createMetricExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	meterProvider := createMeterProvider(exporter, cfg.Interval, res)

	return &OTELExporter{
		config:        cfg,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(MeterName),
	}, nil
}

// Meter returns the meter the OTel client records into.
func (e *OTELExporter) Meter() otelmetric.Meter {
	return e.meter
}

// Start blocks until ctx is done. The periodic reader pushes in the background.
func (e *OTELExporter) Start(ctx context.Context) error {
	slog.Info("starting otel exporter",
		"transport", e.config.Transport,
		"endpoint", e.config.GetEndpoint(),
		"interval", e.config.Interval,
	)

	<-ctx.Done()
	return nil
}

// Stop flushes pending metrics and shuts down the meter provider.
func (e *OTELExporter) Stop() error {
	slog.Info("shutting down otel exporter")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.meterProvider.ForceFlush(ctx); err != nil {
		slog.Warn("failed to flush otel metrics", "error", err)
	}

	if err := e.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
