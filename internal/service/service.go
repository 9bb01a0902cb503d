// Package service translates calls to declared metric methods into calls
// against a metrics client, using metric names derived from the declarations.
package service

import (
	"errors"
	"fmt"

	"github.com/neox5/statbox/internal/metric"
)

// PrefixKey is the parameter holding the metric name prefix.
const PrefixKey = "metric_prefix"

var (
	// ErrUnknownMetric indicates a method identifier absent from the table.
	ErrUnknownMetric = errors.New("undefined dynamic method")

	// ErrArgumentCount indicates a required argument was omitted.
	ErrArgumentCount = errors.New("missing required argument")
)

// Client is the metrics emission capability a service dispatches to.
// Arguments after the name follow the DogStatsD client conventions and
// calls are fire-and-forget.
type Client interface {
	Increment(name string, args ...any)
	Decrement(name string, args ...any)
	Timing(name string, args ...any)
	Microtiming(name string, args ...any)
	Gauge(name string, args ...any)
	Histogram(name string, args ...any)
	Distribution(name string, args ...any)
	Set(name string, args ...any)
	UpdateStats(name string, args ...any)
}

// Params looks up string configuration values.
type Params interface {
	Get(key string) string
}

// Service dispatches declared methods to a Client.
type Service struct {
	client Client
	table  *metric.Table
}

// New builds the method table from decls and the configured prefix.
func New(client Client, params Params, decls []metric.Declaration) (*Service, error) {
	if client == nil {
		return nil, errors.New("metrics client cannot be nil")
	}
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}

	table, err := metric.BuildTable(decls, params.Get(PrefixKey))
	if err != nil {
		return nil, err
	}

	return &Service{client: client, table: table}, nil
}

// Table returns the resolved method table.
func (s *Service) Table() *metric.Table {
	return s.table
}

// Invoke calls the declared method id. The resolved metric name is prepended
// to args; args beyond the kind's required ones are forwarded unchanged.
func (s *Service) Invoke(id string, args ...any) error {
	entry, ok := s.table.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, id)
	}

	if len(args) < entry.Kind.MinArgs() {
		return fmt.Errorf("%s: %w: %s", id, ErrArgumentCount, requiredArgument(entry.Kind))
	}

	name := entry.Name
	switch entry.Kind {
	case metric.KindIncrement:
		s.client.Increment(name, args...)
	case metric.KindDecrement:
		s.client.Decrement(name, args...)
	case metric.KindTiming:
		s.client.Timing(name, args...)
	case metric.KindMicrotiming:
		s.client.Microtiming(name, args...)
	case metric.KindGauge:
		s.client.Gauge(name, args...)
	case metric.KindHistogram:
		s.client.Histogram(name, args...)
	case metric.KindDistribution:
		s.client.Distribution(name, args...)
	case metric.KindSet:
		s.client.Set(name, args...)
	case metric.KindUpdateDelta:
		s.client.UpdateStats(name, args...)
	default:
		return fmt.Errorf("method %s: unsupported kind %s", id, entry.Kind)
	}

	return nil
}

// TouchAllMetrics increments and decrements every distinct metric once so
// that each shows up in the backend before real traffic arrives.
func (s *Service) TouchAllMetrics() {
	for _, name := range s.table.Names() {
		s.client.Increment(name)
		s.client.Decrement(name)
	}
}

// requiredArgument names the first positional argument a kind requires.
func requiredArgument(k metric.Kind) string {
	switch k {
	case metric.KindTiming, metric.KindMicrotiming:
		return "time"
	case metric.KindSet:
		return "member"
	default:
		return "value"
	}
}
