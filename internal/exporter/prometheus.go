package exporter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/neox5/statbox/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PrometheusExporter serves a registry over HTTP for Prometheus scrapes.
type PrometheusExporter struct {
	addr   string
	path   string
	server *http.Server
}

// NewPrometheusExporter creates a new Prometheus HTTP exporter for registry.
// With internalMetricsEnabled the registry additionally carries Go runtime,
// process and scrape handler metrics.
func NewPrometheusExporter(
	cfg *config.PrometheusExportConfig,
	registry *prometheus.Registry,
	internalMetricsEnabled bool,
) (*PrometheusExporter, error) {
	if internalMetricsEnabled {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, err
		}
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, err
		}
	}

	addr := cfg.Address()
	return &PrometheusExporter{
		addr:   addr,
		path:   cfg.Path,
		server: createHTTPServer(addr, cfg.Path, scrapeHandler(registry, internalMetricsEnabled)),
	}, nil
}

// Handler returns the HTTP handler serving the scrape endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return e.server.Handler
}

// Start begins serving HTTP requests and blocks until ctx is done.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting prometheus exporter", "addr", e.addr, "path", e.path)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return e.Stop()
	}
}

// Stop gracefully stops the exporter.
func (e *PrometheusExporter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down prometheus exporter")
	return e.server.Shutdown(ctx)
}
