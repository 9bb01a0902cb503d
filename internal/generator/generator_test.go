package generator

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/neox5/statbox/internal/config"
	"github.com/neox5/statbox/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	id   string
	args []any
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (r *recorder) Invoke(id string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{id: id, args: args})
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTrafficArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind metric.Kind
		want []any
	}{
		{metric.KindIncrement, []any{1.0, nil, 7}},
		{metric.KindDecrement, []any{1.0, nil, 7}},
		{metric.KindUpdateDelta, []any{7}},
		{metric.KindTiming, []any{7}},
		{metric.KindMicrotiming, []any{0.007}},
		{metric.KindGauge, []any{7}},
		{metric.KindHistogram, []any{7}},
		{metric.KindDistribution, []any{7}},
		{metric.KindSet, []any{"7"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, trafficArgs(tt.kind, 7))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	web := &recorder{}
	cfg := config.SimulationConfig{
		Interval: config.DefaultSimulationInterval,
		Traffic: []config.TrafficConfig{
			{Service: "web", Method: "incRequest", Min: 1, Max: 5},
			{Service: "web", Method: "gauQueueDepth", Min: 0, Max: 100, Accumulate: true},
		},
	}

	g, err := New(cfg, map[string]Invoker{"web": web}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	g.Emit()

	web.mu.Lock()
	defer web.mu.Unlock()
	require.Len(t, web.calls, 2)
	assert.Equal(t, "incRequest", web.calls[0].id)
	assert.Len(t, web.calls[0].args, 3)
	assert.Equal(t, "gauQueueDepth", web.calls[1].id)
	assert.Len(t, web.calls[1].args, 1)
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	cfg := config.SimulationConfig{
		Interval: config.DefaultSimulationInterval,
		Traffic:  []config.TrafficConfig{{Service: "db", Method: "incQuery"}},
	}
	_, err := New(cfg, map[string]Invoker{"web": &recorder{}}, discardLogger())
	assert.EqualError(t, err, `service "db" not found for method "incQuery"`)

	cfg.Traffic = []config.TrafficConfig{{Service: "web", Method: "xyzQuery"}}
	_, err = New(cfg, map[string]Invoker{"web": &recorder{}}, discardLogger())
	assert.Error(t, err)
}

func TestEmitContinuesAfterError(t *testing.T) {
	t.Parallel()

	failing := &recorder{err: assert.AnError}
	ok := &recorder{}
	cfg := config.SimulationConfig{
		Interval: config.DefaultSimulationInterval,
		Traffic: []config.TrafficConfig{
			{Service: "a", Method: "incX"},
			{Service: "b", Method: "incY"},
		},
	}

	g, err := New(cfg, map[string]Invoker{"a": failing, "b": ok}, discardLogger())
	require.NoError(t, err)

	g.Emit()
	assert.Len(t, failing.calls, 1)
	assert.Len(t, ok.calls, 1)
}
