package config

import (
	"fmt"
	"time"

	"github.com/neox5/statbox/internal/metric"
)

// DefaultSimulationInterval is the tick interval of the traffic simulator.
const DefaultSimulationInterval = 1 * time.Second

// SimulationConfig defines synthetic traffic invoked against services.
type SimulationConfig struct {
	Interval time.Duration   `yaml:"interval"`
	Traffic  []TrafficConfig `yaml:"traffic"`
}

// TrafficConfig drives one dynamic method with random values in [Min, Max].
// With Accumulate the method receives the running sum instead.
type TrafficConfig struct {
	Service    string `yaml:"service"`
	Method     string `yaml:"method"`
	Min        int    `yaml:"min"`
	Max        int    `yaml:"max"`
	Accumulate bool   `yaml:"accumulate"`
}

// Validate applies defaults and checks traffic against the service catalogs.
func (s *SimulationConfig) Validate(services map[string]ServiceConfig) error {
	if s.Interval == 0 {
		s.Interval = DefaultSimulationInterval
	}
	if s.Interval < 0 {
		return fmt.Errorf("invalid interval: %s", s.Interval)
	}

	for i := range s.Traffic {
		if err := s.Traffic[i].validate(services); err != nil {
			return fmt.Errorf("traffic[%d]: %w", i, err)
		}
	}
	return nil
}

func (t *TrafficConfig) validate(services map[string]ServiceConfig) error {
	decls, ok := services[t.Service]
	if !ok {
		return fmt.Errorf("unknown service %q", t.Service)
	}

	kind, name, err := metric.ParseMethodID(t.Method)
	if err != nil {
		return err
	}

	declared := false
	for _, d := range decls {
		if d.Kind == kind && d.Name == name {
			declared = true
			break
		}
	}
	if !declared {
		return fmt.Errorf("method %q is not declared by service %q", t.Method, t.Service)
	}

	if t.Min > t.Max {
		return fmt.Errorf("min (%d) must be <= max (%d)", t.Min, t.Max)
	}
	return nil
}
