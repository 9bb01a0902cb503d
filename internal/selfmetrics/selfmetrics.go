// Package selfmetrics reports statbox's own resource usage as a typed
// service over the dynamic method table.
package selfmetrics

import (
	"log/slog"
	"time"

	"github.com/neox5/statbox/internal/metric"
	"github.com/neox5/statbox/internal/monitor"
	"github.com/neox5/statbox/internal/service"
)

// Prefix is the metric name prefix of all self metrics.
const Prefix = "statbox"

type params struct{}

func (params) Get(key string) string {
	if key == service.PrefixKey {
		return Prefix
	}
	return ""
}

// Catalog returns the methods the self metrics service declares.
func Catalog() []metric.Declaration {
	return metric.NewCatalog().
		Gauge("ProcessCpuPercent", "Process CPU usage in percent of one core").
		Gauge("ProcessCpuUtilization", "Process CPU usage relative to GOMAXPROCS").
		Gauge("RuntimeGoroutines", "Number of goroutines").
		Gauge("RuntimeHeapAllocBytes", "Bytes of allocated heap objects").
		Gauge("RuntimeHeapSysBytes", "Bytes of heap memory obtained from the OS").
		Gauge("RuntimeStackInuseBytes", "Bytes in stack spans").
		Gauge("RuntimeGcCount", "Number of completed GC cycles").
		Gauge("RuntimeGcCpuFraction", "Fraction of CPU time used by the GC").
		Increment("MonitorSaturationDetected", "CPU saturation events").
		Microtiming("MonitorCollectDuration", "Duration of one resource collection").
		Declarations()
}

// Service emits self metrics through a metrics client.
type Service struct {
	*service.Service
}

// New creates the self metrics service on client.
func New(client service.Client) (*Service, error) {
	svc, err := service.New(client, params{}, Catalog())
	if err != nil {
		return nil, err
	}
	return &Service{Service: svc}, nil
}

// Record emits one monitor sample.
func (s *Service) Record(sample monitor.Sample) {
	s.ProcessCPUPercent(sample.CPUPercent)
	s.ProcessCPUUtilization(sample.Utilization)
	s.RuntimeGoroutines(sample.Goroutines)
	s.RuntimeHeapAllocBytes(sample.HeapAlloc)
	s.RuntimeHeapSysBytes(sample.HeapSys)
	s.RuntimeStackInuseBytes(sample.StackInuse)
	s.RuntimeGCCount(sample.NumGC)
	s.RuntimeGCCPUFraction(sample.GCCPUFraction)
	s.MonitorCollectDuration(sample.Duration)

	if sample.Saturation == monitor.SaturationSaturated {
		s.MonitorSaturationDetected()
	}
}

func (s *Service) ProcessCPUPercent(v float64) {
	s.invoke("gauProcessCpuPercent", v)
}

func (s *Service) ProcessCPUUtilization(v float64) {
	s.invoke("gauProcessCpuUtilization", v)
}

func (s *Service) RuntimeGoroutines(n int) {
	s.invoke("gauRuntimeGoroutines", n)
}

func (s *Service) RuntimeHeapAllocBytes(b uint64) {
	s.invoke("gauRuntimeHeapAllocBytes", b)
}

func (s *Service) RuntimeHeapSysBytes(b uint64) {
	s.invoke("gauRuntimeHeapSysBytes", b)
}

func (s *Service) RuntimeStackInuseBytes(b uint64) {
	s.invoke("gauRuntimeStackInuseBytes", b)
}

func (s *Service) RuntimeGCCount(n uint32) {
	s.invoke("gauRuntimeGcCount", n)
}

func (s *Service) RuntimeGCCPUFraction(v float64) {
	s.invoke("gauRuntimeGcCpuFraction", v)
}

func (s *Service) MonitorSaturationDetected() {
	s.invoke("incMonitorSaturationDetected")
}

// MonitorCollectDuration records d as a microtiming in seconds.
func (s *Service) MonitorCollectDuration(d time.Duration) {
	s.invoke("micMonitorCollectDuration", d.Seconds())
}

func (s *Service) invoke(id string, args ...any) {
	if err := s.Invoke(id, args...); err != nil {
		slog.Error("failed to record self metric", "method", id, "error", err)
	}
}
