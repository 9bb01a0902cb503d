package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Saturation levels derived from CPU utilization.
const (
	SaturationNormal    = "normal"
	SaturationHigh      = "high"
	SaturationSaturated = "saturated"
)

// Sample is one resource usage reading of the current process.
type Sample struct {
	CPUPercent    float64
	Utilization   float64
	Cores         int
	Goroutines    int
	HeapAlloc     uint64
	HeapSys       uint64
	StackInuse    uint64
	NumGC         uint32
	GCCPUFraction float64
	Saturation    string
	Duration      time.Duration
}

// Recorder receives every collected sample.
type Recorder interface {
	Record(Sample)
}

// Monitor tracks system resource usage and saturation indicators.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	recorder Recorder
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a new monitor with specified collection interval.
// recorder may be nil, in which case samples are only logged.
func New(interval time.Duration, logger *slog.Logger, recorder Recorder) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	return &Monitor{
		interval: interval,
		logger:   logger,
		recorder: recorder,
		proc:     proc,
	}, nil
}

// Run starts the monitoring loop in a background goroutine.
// The loop exits when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.Collect()

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.Collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Collect reads current resource usage, logs it and hands it to the recorder.
func (m *Monitor) Collect() Sample {
	s := m.sample()

	m.log(s)
	if m.recorder != nil {
		m.recorder.Record(s)
	}
	return s
}

func (m *Monitor) sample() Sample {
	start := time.Now()

	processCPU, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	cores := runtime.GOMAXPROCS(-1)
	maxCPU := float64(cores * 100)

	utilization := 0.0
	if maxCPU > 0 {
		utilization = processCPU / maxCPU
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Sample{
		CPUPercent:    processCPU,
		Utilization:   utilization,
		Cores:         cores,
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     ms.HeapAlloc,
		HeapSys:       ms.HeapSys,
		StackInuse:    ms.StackInuse,
		NumGC:         ms.NumGC,
		GCCPUFraction: ms.GCCPUFraction,
		Saturation:    saturation(utilization),
		Duration:      time.Since(start),
	}
}

func (m *Monitor) log(s Sample) {
	mb := func(b uint64) float64 {
		return float64(b) / (1024 * 1024)
	}
	kb := func(b uint64) float64 {
		return float64(b) / 1024
	}

	m.logger.LogAttrs(
		context.Background(),
		slog.LevelInfo,
		"resource",
		slog.String("cpu", fmt.Sprintf("%.4f%%", s.CPUPercent)),
		slog.String("util", fmt.Sprintf("%.4f%%", s.Utilization*100)),
		slog.Int("cores", s.Cores),
		slog.Int("gor", s.Goroutines),
		slog.String(
			"mem",
			fmt.Sprintf(
				"alloc:%.2fMB sys:%.2fMB stack:%.0fKB",
				mb(s.HeapAlloc),
				mb(s.HeapSys),
				kb(s.StackInuse),
			),
		),
		slog.Uint64("gc", uint64(s.NumGC)),
		slog.String("gc_cpu", fmt.Sprintf("%.3f", s.GCCPUFraction)),
		slog.String("sat", s.Saturation),
	)

	if s.Saturation == SaturationSaturated {
		m.logger.Warn(
			"cpu saturation detected",
			"cpu", s.CPUPercent,
			"util_pct", s.Utilization*100,
			"action", "reduce load or increase GOMAXPROCS",
		)
	}
}

func saturation(utilization float64) string {
	switch {
	case utilization > 0.95:
		return SaturationSaturated
	case utilization > 0.80:
		return SaturationHigh
	default:
		return SaturationNormal
	}
}
