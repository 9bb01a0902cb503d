package config

import (
	"fmt"
	"slices"
	"time"
)

const (
	// Prometheus defaults
	DefaultPrometheusPort = 9090
	DefaultPrometheusPath = "/metrics"

	// OTEL defaults
	DefaultOTELInterval   = 1 * time.Second
	DefaultOTELTransport  = "grpc"
	DefaultOTELHost       = "localhost"
	DefaultOTELPortGRPC   = 4317
	DefaultOTELPortHTTP   = 4318
	DefaultServiceName    = "statbox"
	DefaultServiceVersion = "dev"
)

// ExportConfig defines where metric calls end up.
type ExportConfig struct {
	Prometheus *PrometheusExportConfig `yaml:"prometheus,omitempty"`
	OTEL       *OTELExportConfig       `yaml:"otel,omitempty"`
}

// Validate applies defaults and validates export configuration.
func (e *ExportConfig) Validate() error {
	// Default to Prometheus enabled if no exporters configured
	if e.Prometheus == nil && e.OTEL == nil {
		e.Prometheus = &PrometheusExportConfig{Enabled: true}
	}

	if e.Prometheus != nil && e.Prometheus.Enabled {
		if err := e.Prometheus.Validate(); err != nil {
			return err
		}
	}

	if e.OTEL != nil && e.OTEL.Enabled {
		if err := e.OTEL.Validate(); err != nil {
			return err
		}
	}

	promEnabled := e.PrometheusEnabled()
	otelEnabled := e.OTELEnabled()

	if !promEnabled && !otelEnabled {
		return fmt.Errorf("at least one exporter must be enabled")
	}

	// A service forwards to exactly one client
	if promEnabled && otelEnabled {
		return fmt.Errorf("only one exporter can be enabled at a time (prometheus or otel)")
	}

	return nil
}

// PrometheusEnabled reports whether the Prometheus exporter is active.
func (e *ExportConfig) PrometheusEnabled() bool {
	return e.Prometheus != nil && e.Prometheus.Enabled
}

// OTELEnabled reports whether the OTEL exporter is active.
func (e *ExportConfig) OTELEnabled() bool {
	return e.OTEL != nil && e.OTEL.Enabled
}

// PrometheusExportConfig defines Prometheus pull endpoint settings.
type PrometheusExportConfig struct {
	Enabled bool          `yaml:"enabled"`
	Port    int           `yaml:"port"`
	Path    string        `yaml:"path"`
	Buckets BucketsConfig `yaml:"buckets"`
}

// BucketsConfig holds histogram bucket upper bounds.
// Empty slices fall back to the client defaults.
type BucketsConfig struct {
	Timing []float64 `yaml:"timing,omitempty"`
	Value  []float64 `yaml:"value,omitempty"`
}

// Validate applies defaults and validates Prometheus configuration.
func (c *PrometheusExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	// Apply defaults
	if c.Port == 0 {
		c.Port = DefaultPrometheusPort
	}
	if c.Path == "" {
		c.Path = DefaultPrometheusPath
	}

	// Validate port range
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid prometheus port: %d", c.Port)
	}

	if c.Path[0] != '/' {
		return fmt.Errorf("invalid prometheus path: %s (must start with /)", c.Path)
	}

	if err := validateBuckets("timing", c.Buckets.Timing); err != nil {
		return err
	}
	return validateBuckets("value", c.Buckets.Value)
}

// Address returns the listen address of the scrape endpoint.
func (c *PrometheusExportConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func validateBuckets(name string, buckets []float64) error {
	if len(buckets) == 0 {
		return nil
	}
	if !slices.IsSorted(buckets) {
		return fmt.Errorf("invalid %s buckets: must be sorted ascending", name)
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i] == buckets[i-1] {
			return fmt.Errorf("invalid %s buckets: duplicate bound %g", name, buckets[i])
		}
	}
	return nil
}

// OTELExportConfig defines OTEL push settings.
type OTELExportConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Transport string            `yaml:"transport"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	Insecure  *bool             `yaml:"insecure,omitempty"`
	Interval  time.Duration     `yaml:"interval"`
	Resource  map[string]string `yaml:"resource,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}

// Validate applies defaults and validates OTEL configuration.
func (c *OTELExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	// Apply transport default
	if c.Transport == "" {
		c.Transport = DefaultOTELTransport
	}

	// Validate transport
	if c.Transport != "grpc" && c.Transport != "http" {
		return fmt.Errorf("invalid transport: %s (must be grpc or http)", c.Transport)
	}

	// Apply host default
	if c.Host == "" {
		c.Host = DefaultOTELHost
	}

	// Apply port default based on transport
	if c.Port == 0 {
		if c.Transport == "grpc" {
			c.Port = DefaultOTELPortGRPC
		} else {
			c.Port = DefaultOTELPortHTTP
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid otel port: %d", c.Port)
	}

	if c.Insecure == nil {
		insecure := true
		c.Insecure = &insecure
	}

	if c.Interval == 0 {
		c.Interval = DefaultOTELInterval
	}
	if c.Interval < 0 {
		return fmt.Errorf("invalid otel interval: %s", c.Interval)
	}

	// Apply resource defaults
	if c.Resource == nil {
		c.Resource = make(map[string]string)
	}
	if _, exists := c.Resource["service.name"]; !exists {
		c.Resource["service.name"] = DefaultServiceName
	}
	if _, exists := c.Resource["service.version"]; !exists {
		c.Resource["service.version"] = DefaultServiceVersion
	}

	return nil
}

// GetEndpoint returns the full endpoint address.
func (c *OTELExportConfig) GetEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
