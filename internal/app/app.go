package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neox5/statbox/internal/client"
	"github.com/neox5/statbox/internal/config"
	"github.com/neox5/statbox/internal/exporter"
	"github.com/neox5/statbox/internal/generator"
	"github.com/neox5/statbox/internal/monitor"
	"github.com/neox5/statbox/internal/selfmetrics"
	"github.com/neox5/statbox/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrPullExporter is returned for one-shot runs against the Prometheus
// exporter, whose registry only lives as long as the process serves it.
var ErrPullExporter = errors.New("prometheus exporter only serves metrics while running; use --dry-run, an otel exporter, or settings.touch_on_start with serve")

// Options controls how the application is assembled.
type Options struct {
	// DryRun logs every metric call instead of exporting it.
	DryRun bool

	// OneShot marks runs that exit right after emitting, such as touch
	// and emit. They need a push exporter or DryRun.
	OneShot bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// App holds initialized application components.
type App struct {
	Config             *config.Config
	Client             service.Client
	Services           map[string]*service.Service
	SelfMetrics        *selfmetrics.Service
	Generator          *generator.Generator
	PrometheusExporter *exporter.PrometheusExporter
	OTELExporter       *exporter.OTELExporter

	logger *slog.Logger
}

// New initializes the application from a validated configuration.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.OneShot && !opts.DryRun && cfg.Export.PrometheusEnabled() {
		return nil, ErrPullExporter
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config:   cfg,
		Services: make(map[string]*service.Service, len(cfg.Services)),
		logger:   logger,
	}

	if err := a.createClient(ctx, opts.DryRun); err != nil {
		return nil, err
	}

	invokers := make(map[string]generator.Invoker, len(cfg.Services))
	for _, name := range cfg.ServiceNames() {
		svc, err := service.New(a.Client, cfg.Params, cfg.Services[name].Declarations())
		if err != nil {
			return nil, fmt.Errorf("failed to create service %q: %w", name, err)
		}
		a.Services[name] = svc
		invokers[name] = svc

		for _, e := range svc.Table().Entries() {
			logger.Debug("registered metric",
				"service", name,
				"id", e.ID,
				"kind", e.Kind,
				"name", e.Name)
		}
		logger.Info("registered service", "name", name, "methods", svc.Table().Len())
	}

	if cfg.Settings.InternalMetrics.Enabled {
		self, err := selfmetrics.New(a.Client)
		if err != nil {
			return nil, fmt.Errorf("failed to create self metrics: %w", err)
		}
		a.SelfMetrics = self
	}

	gen, err := generator.New(cfg.Simulation, invokers, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	a.Generator = gen

	return a, nil
}

// createClient selects the metrics client and its exporter.
func (a *App) createClient(ctx context.Context, dryRun bool) error {
	cfg := a.Config

	switch {
	case dryRun:
		a.Client = client.NewLog(a.logger, slog.LevelInfo)

	case cfg.Export.PrometheusEnabled():
		prom, err := client.NewPrometheus(client.PrometheusOptions{
			Registry:      prometheus.NewRegistry(),
			TimingBuckets: cfg.Export.Prometheus.Buckets.Timing,
			ValueBuckets:  cfg.Export.Prometheus.Buckets.Value,
		})
		if err != nil {
			return fmt.Errorf("failed to create prometheus client: %w", err)
		}

		exp, err := exporter.NewPrometheusExporter(
			cfg.Export.Prometheus,
			prom.Registry(),
			cfg.Settings.InternalMetrics.Enabled,
		)
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		a.Client = prom
		a.PrometheusExporter = exp

	case cfg.Export.OTELEnabled():
		exp, err := exporter.NewOTELExporter(ctx, cfg.Export.OTEL)
		if err != nil {
			return fmt.Errorf("failed to create OTEL exporter: %w", err)
		}

		a.Client = client.NewOTel(exp.Meter())
		a.OTELExporter = exp

	default:
		return fmt.Errorf("no exporter enabled")
	}

	return nil
}

// Service returns the named service.
func (a *App) Service(name string) (*service.Service, error) {
	svc, ok := a.Services[name]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", name)
	}
	return svc, nil
}

// TouchAll touches every metric of every service.
func (a *App) TouchAll() {
	for _, name := range a.Config.ServiceNames() {
		a.Services[name].TouchAllMetrics()
		a.logger.Info("touched metrics", "service", name, "metrics", len(a.Services[name].Table().Names()))
	}
}

// Run starts simulation, monitoring and the exporter, and blocks until ctx
// is cancelled or the exporter fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Config.Settings.TouchOnStart {
		a.TouchAll()
	}

	a.Generator.Start(ctx)
	defer a.Generator.Wait()

	if a.Config.Settings.Monitor.Enabled {
		var recorder monitor.Recorder
		if a.SelfMetrics != nil {
			recorder = a.SelfMetrics
		}

		mon, err := monitor.New(a.Config.Settings.Monitor.Interval, a.logger, recorder)
		if err != nil {
			a.logger.Warn("resource monitor disabled", "error", err)
		} else {
			mon.Run(ctx)
			defer mon.Wait()
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if a.PrometheusExporter != nil {
		wg.Go(func() {
			if err := a.PrometheusExporter.Start(ctx); err != nil {
				errChan <- fmt.Errorf("prometheus exporter: %w", err)
			}
		})
	}

	if a.OTELExporter != nil {
		wg.Go(func() {
			if err := a.OTELExporter.Start(ctx); err != nil {
				errChan <- fmt.Errorf("otel exporter: %w", err)
			}
		})
	}

	var runErr error
	select {
	case runErr = <-errChan:
		a.logger.Error("exporter error", "error", runErr)
		cancel()
	case <-ctx.Done():
	}

	wg.Wait()
	return runErr
}

// Close flushes and shuts down the push exporter, if any.
func (a *App) Close() error {
	if a.OTELExporter == nil {
		return nil
	}
	return a.OTELExporter.Stop()
}
