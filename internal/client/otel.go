package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Instrument name suffixes for kinds that can share a metric name with a
// gauge or histogram.
const (
	otelCountSuffix = ".count"
	otelSetSuffix   = ".unique"
)

// OTel records calls on instruments created from an OpenTelemetry meter.
// Gauges and histograms use the metric name verbatim; counts and sets are
// suffixed. Tags become attributes.
type OTel struct {
	meter otelmetric.Meter

	mu         sync.Mutex
	counters   map[string]otelmetric.Float64UpDownCounter
	gauges     map[string]otelmetric.Float64Gauge
	histograms map[familyKind]map[string]otelmetric.Float64Histogram
	sets       map[string]otelmetric.Int64UpDownCounter
	members    map[string]struct{}
	setSizes   map[string]int
}

// NewOTel creates a client on meter.
func NewOTel(meter otelmetric.Meter) *OTel {
	return &OTel{
		meter:    meter,
		counters: make(map[string]otelmetric.Float64UpDownCounter),
		gauges:   make(map[string]otelmetric.Float64Gauge),
		histograms: map[familyKind]map[string]otelmetric.Float64Histogram{
			familyTiming:    make(map[string]otelmetric.Float64Histogram),
			familyHistogram: make(map[string]otelmetric.Float64Histogram),
		},
		sets:    make(map[string]otelmetric.Int64UpDownCounter),
		members:  make(map[string]struct{}),
		setSizes: make(map[string]int),
	}
}

func (o *OTel) Increment(name string, args ...any) {
	s, err := parseCounter(args)
	if err != nil {
		dropped("increment", name, err)
		return
	}
	o.add(name, s)
}

func (o *OTel) Decrement(name string, args ...any) {
	s, err := parseCounter(args)
	if err != nil {
		dropped("decrement", name, err)
		return
	}
	s.value = -s.value
	o.add(name, s)
}

func (o *OTel) UpdateStats(name string, args ...any) {
	s, err := parseDelta(args)
	if err != nil {
		dropped("update_stats", name, err)
		return
	}
	o.add(name, s)
}

func (o *OTel) Timing(name string, args ...any) {
	s, err := parseDuration(args, time.Millisecond)
	if err != nil {
		dropped("timing", name, err)
		return
	}
	o.record(name, familyTiming, s)
}

func (o *OTel) Microtiming(name string, args ...any) {
	s, err := parseDuration(args, time.Second)
	if err != nil {
		dropped("microtiming", name, err)
		return
	}
	o.record(name, familyTiming, s)
}

func (o *OTel) Gauge(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("gauge", name, err)
		return
	}

	o.mu.Lock()
	gauge, ok := o.gauges[name]
	if !ok {
		gauge, err = o.meter.Float64Gauge(name, otelmetric.WithDescription(description(familyGauge, name)))
		if err != nil {
			o.mu.Unlock()
			dropped("gauge", name, fmt.Errorf("failed to create gauge: %w", err))
			return
		}
		o.gauges[name] = gauge
		slog.Debug("registered otel metric", "name", name, "type", familyGauge)
	}
	o.mu.Unlock()

	gauge.Record(context.Background(), s.value, otelmetric.WithAttributes(attributes(s.tags)...))
}

func (o *OTel) Histogram(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("histogram", name, err)
		return
	}
	o.record(name, familyHistogram, s)
}

func (o *OTel) Distribution(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("distribution", name, err)
		return
	}
	o.record(name, familyHistogram, s)
}

// Set counts distinct members per attribute set; the instrument is named
// "<name>.unique" and grows by one for every member not seen before, up to
// DefaultMaxSetMembers per attribute set.
func (o *OTel) Set(name string, args ...any) {
	s, err := parseMember(args)
	if err != nil {
		dropped("set", name, err)
		return
	}

	attrs := attribute.NewSet(attributes(s.tags)...)
	seriesKey := name + "\xff" + attrs.Encoded(attribute.DefaultEncoder())
	memberKey := seriesKey + "\xff" + s.member

	o.mu.Lock()
	if _, seen := o.members[memberKey]; seen {
		o.mu.Unlock()
		return
	}
	if o.setSizes[seriesKey] >= DefaultMaxSetMembers {
		o.mu.Unlock()
		slog.Debug("dropped set member over cardinality limit", "name", name, "limit", DefaultMaxSetMembers)
		return
	}
	counter, ok := o.sets[name]
	if !ok {
		counter, err = o.meter.Int64UpDownCounter(name+otelSetSuffix, otelmetric.WithDescription(description(familySet, name)))
		if err != nil {
			o.mu.Unlock()
			dropped("set", name, fmt.Errorf("failed to create set counter: %w", err))
			return
		}
		o.sets[name] = counter
		slog.Debug("registered otel metric", "name", name+otelSetSuffix, "type", familySet)
	}
	o.members[memberKey] = struct{}{}
	o.setSizes[seriesKey]++
	o.mu.Unlock()

	counter.Add(context.Background(), 1, otelmetric.WithAttributeSet(attrs))
}

func (o *OTel) add(name string, s sample) {
	o.mu.Lock()
	counter, ok := o.counters[name]
	if !ok {
		var err error
		counter, err = o.meter.Float64UpDownCounter(name+otelCountSuffix, otelmetric.WithDescription(description(familyCount, name)))
		if err != nil {
			o.mu.Unlock()
			dropped("count", name, fmt.Errorf("failed to create counter: %w", err))
			return
		}
		o.counters[name] = counter
		slog.Debug("registered otel metric", "name", name+otelCountSuffix, "type", familyCount)
	}
	o.mu.Unlock()

	counter.Add(context.Background(), s.value, otelmetric.WithAttributes(attributes(s.tags)...))
}

func (o *OTel) record(name string, kind familyKind, s sample) {
	o.mu.Lock()
	hist, ok := o.histograms[kind][name]
	if !ok {
		opts := []otelmetric.Float64HistogramOption{
			otelmetric.WithDescription(description(kind, name)),
		}
		if kind == familyTiming {
			opts = append(opts, otelmetric.WithUnit("s"))
		}

		var err error
		hist, err = o.meter.Float64Histogram(name, opts...)
		if err != nil {
			o.mu.Unlock()
			dropped(string(kind), name, fmt.Errorf("failed to create histogram: %w", err))
			return
		}
		o.histograms[kind][name] = hist
		slog.Debug("registered otel metric", "name", name, "type", kind)
	}
	o.mu.Unlock()

	hist.Record(context.Background(), s.value, otelmetric.WithAttributes(attributes(s.tags)...))
}

func attributes(tags Tags) []attribute.KeyValue {
	if len(tags) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for _, k := range tags.Keys() {
		attrs = append(attrs, attribute.String(k, tags[k]))
	}
	return attrs
}

func description(kind familyKind, name string) string {
	return fmt.Sprintf("statbox %s %s", kind, name)
}
