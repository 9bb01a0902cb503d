package client

import (
	"context"
	"log/slog"
)

// Log writes every call to a logger instead of a backend. It is used for
// dry runs.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog creates a client logging at level.
func NewLog(logger *slog.Logger, level slog.Level) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, level: level}
}

func (l *Log) Increment(name string, args ...any)    { l.log("increment", name, args) }
func (l *Log) Decrement(name string, args ...any)    { l.log("decrement", name, args) }
func (l *Log) Timing(name string, args ...any)       { l.log("timing", name, args) }
func (l *Log) Microtiming(name string, args ...any)  { l.log("microtiming", name, args) }
func (l *Log) Gauge(name string, args ...any)        { l.log("gauge", name, args) }
func (l *Log) Histogram(name string, args ...any)    { l.log("histogram", name, args) }
func (l *Log) Distribution(name string, args ...any) { l.log("distribution", name, args) }
func (l *Log) Set(name string, args ...any)          { l.log("set", name, args) }
func (l *Log) UpdateStats(name string, args ...any)  { l.log("update_stats", name, args) }

func (l *Log) log(op, name string, args []any) {
	l.logger.LogAttrs(
		context.Background(),
		l.level,
		"metric",
		slog.String("op", op),
		slog.String("name", name),
		slog.Any("args", args),
	)
}
