package config

import (
	"fmt"
	"time"
)

// DefaultMonitorInterval is the sampling interval of the process monitor.
const DefaultMonitorInterval = 5 * time.Second

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	TouchOnStart    bool                  `yaml:"touch_on_start"`
	InternalMetrics InternalMetricsConfig `yaml:"internal_metrics"`
	Monitor         MonitorConfig         `yaml:"monitor"`
}

// InternalMetricsConfig controls statbox's self-monitoring metrics.
type InternalMetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MonitorConfig controls the process resource monitor.
type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Validate applies defaults and validates settings configuration.
func (s *SettingsConfig) Validate() error {
	if s.Monitor.Interval == 0 {
		s.Monitor.Interval = DefaultMonitorInterval
	}
	if s.Monitor.Interval < 0 {
		return fmt.Errorf("invalid monitor interval: %s", s.Monitor.Interval)
	}
	return nil
}
