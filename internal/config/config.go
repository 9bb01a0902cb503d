package config

import (
	"fmt"
	"sort"

	"github.com/neox5/statbox/internal/service"
)

// Config holds the complete application configuration.
type Config struct {
	Params     Params                   `yaml:"params"`
	Services   map[string]ServiceConfig `yaml:"services"`
	Export     ExportConfig             `yaml:"export"`
	Settings   SettingsConfig           `yaml:"settings"`
	Simulation SimulationConfig         `yaml:"simulation"`
}

// Params holds string parameters looked up by services.
type Params map[string]string

// Get returns the parameter value for key, or "" if unset.
func (p Params) Get(key string) string {
	return p[key]
}

// Validate applies defaults and checks consistency of the whole configuration.
func (c *Config) Validate() error {
	if c.Params.Get(service.PrefixKey) == "" {
		return fmt.Errorf("params.%s is required", service.PrefixKey)
	}

	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service must be defined")
	}
	for _, name := range c.ServiceNames() {
		if len(c.Services[name]) == 0 {
			return fmt.Errorf("service %q declares no methods", name)
		}
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("invalid export config: %w", err)
	}

	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := c.Simulation.Validate(c.Services); err != nil {
		return fmt.Errorf("invalid simulation: %w", err)
	}

	return nil
}

// ServiceNames returns the configured service names, sorted.
func (c *Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
