package client

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := NewLog(logger, slog.LevelInfo)
	c.Increment("custom_prefix.netaxept.registration_failed")
	c.Timing("custom_prefix.subscribe.failed", 12345)

	out := buf.String()
	assert.Contains(t, out, "op=increment name=custom_prefix.netaxept.registration_failed")
	assert.Contains(t, out, "op=timing name=custom_prefix.subscribe.failed args=[12345]")
}

func TestLogLevelFiltered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewLog(logger, slog.LevelDebug).Gauge("app.queue.depth", 1)
	assert.Empty(t, buf.String())
}
