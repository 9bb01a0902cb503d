package monitor

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	samples []Sample
}

func (r *recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func TestSaturation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SaturationNormal, saturation(0))
	assert.Equal(t, SaturationNormal, saturation(0.80))
	assert.Equal(t, SaturationHigh, saturation(0.81))
	assert.Equal(t, SaturationHigh, saturation(0.95))
	assert.Equal(t, SaturationSaturated, saturation(0.96))
}

func TestCollect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &recorder{}
	m, err := New(time.Second, slog.New(slog.NewTextHandler(&buf, nil)), rec)
	require.NoError(t, err)

	s := m.Collect()
	assert.Positive(t, s.Cores)
	assert.Positive(t, s.Goroutines)
	assert.Positive(t, s.HeapSys)
	assert.NotEmpty(t, s.Saturation)

	require.Equal(t, 1, rec.len())
	assert.Contains(t, buf.String(), "msg=resource")
}

func TestRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &recorder{}
	m, err := New(10*time.Millisecond, slog.New(slog.NewTextHandler(&buf, nil)), rec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)

	assert.Eventually(t, func() bool { return rec.len() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	m.Wait()
}
