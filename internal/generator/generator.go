// Package generator produces synthetic traffic against dynamic service methods.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/neox5/simv/clock"
	"github.com/neox5/simv/source"
	"github.com/neox5/simv/transform"
	"github.com/neox5/simv/value"
	"github.com/neox5/statbox/internal/config"
	"github.com/neox5/statbox/internal/metric"
)

// Invoker dispatches a dynamic method by identifier.
type Invoker interface {
	Invoke(id string, args ...any) error
}

// stream feeds one method from a simv value.
type stream struct {
	service string
	method  string
	kind    metric.Kind
	invoker Invoker
	value   value.Value[int]
}

// Generator manages simv components and periodic method invocation.
type Generator struct {
	clock    clock.Clock
	interval time.Duration
	streams  []stream
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a generator for the configured traffic.
func New(cfg config.SimulationConfig, services map[string]Invoker, logger *slog.Logger) (*Generator, error) {
	clk := clock.NewPeriodicClock(cfg.Interval)

	streams := make([]stream, 0, len(cfg.Traffic))
	for _, t := range cfg.Traffic {
		invoker, exists := services[t.Service]
		if !exists {
			return nil, fmt.Errorf("service %q not found for method %q", t.Service, t.Method)
		}

		kind, _, err := metric.ParseMethodID(t.Method)
		if err != nil {
			return nil, err
		}

		var src source.Publisher[int] = source.NewRandomIntSource(clk, t.Min, t.Max)

		var transforms []transform.Transformation[int]
		if t.Accumulate {
			transforms = append(transforms, transform.NewAccumulate[int]())
		}

		streams = append(streams, stream{
			service: t.Service,
			method:  t.Method,
			kind:    kind,
			invoker: invoker,
			value:   value.New(src, transforms...),
		})
	}

	return &Generator{
		clock:    clk,
		interval: cfg.Interval,
		streams:  streams,
		logger:   logger,
	}, nil
}

// Len returns the number of simulated methods.
func (g *Generator) Len() int {
	return len(g.streams)
}

// Start begins value generation and invokes every method once per interval
// until ctx is cancelled.
func (g *Generator) Start(ctx context.Context) {
	if len(g.streams) == 0 {
		return
	}

	g.clock.Start()
	g.logger.Info("starting traffic simulation", "methods", len(g.streams), "interval", g.interval)

	g.wg.Go(func() {
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				g.clock.Stop()
				g.logger.Info("traffic simulation stopped")
				return
			case <-ticker.C:
				g.Emit()
			}
		}
	})
}

// Wait blocks until the simulation goroutine exits.
func (g *Generator) Wait() {
	g.wg.Wait()
}

// Emit invokes every simulated method with its current value.
func (g *Generator) Emit() {
	for _, s := range g.streams {
		v := s.value.Value()
		if err := s.invoker.Invoke(s.method, trafficArgs(s.kind, v)...); err != nil {
			g.logger.Warn("simulated call failed",
				"service", s.service,
				"method", s.method,
				"error", err)
			continue
		}
		g.logger.Debug("simulated call", "service", s.service, "method", s.method, "value", v)
	}
}

// trafficArgs maps a generated value onto the argument list of kind.
func trafficArgs(kind metric.Kind, v int) []any {
	switch kind {
	case metric.KindIncrement, metric.KindDecrement:
		return []any{1.0, nil, v}
	case metric.KindMicrotiming:
		// v is in milliseconds
		return []any{float64(v) / 1000}
	case metric.KindSet:
		return []any{strconv.Itoa(v)}
	default:
		return []any{v}
	}
}
