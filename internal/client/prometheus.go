package client

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Name suffixes appended to exported families.
const (
	countSuffix = "_total"
	setSuffix   = "_unique"
)

// DefaultMaxSetMembers bounds the distinct members tracked per set series.
// Members beyond the bound are dropped.
const DefaultMaxSetMembers = 10000

// histogramSuffixes are the series suffixes a histogram family exposes.
var histogramSuffixes = []string{"_count", "_sum", "_bucket"}

// DefaultValueBuckets are used for histogram and distribution observations.
var DefaultValueBuckets = prometheus.ExponentialBuckets(1, 4, 10)

// familyKind determines how a family aggregates and is exported.
type familyKind string

const (
	familyCount     familyKind = "count"
	familyGauge     familyKind = "gauge"
	familyTiming    familyKind = "timing"
	familyHistogram familyKind = "histogram"
	familySet       familyKind = "set"
)

// PrometheusOptions configures a Prometheus client.
type PrometheusOptions struct {
	// Registry receives the client's collector. A new registry is created if nil.
	Registry *prometheus.Registry

	// TimingBuckets are upper bounds in seconds for timing observations.
	TimingBuckets []float64

	// ValueBuckets are upper bounds for histogram and distribution observations.
	ValueBuckets []float64

	// MaxSetMembers bounds set cardinality per series. Defaults to
	// DefaultMaxSetMembers.
	MaxSetMembers int
}

// Prometheus aggregates calls in-process and exposes them through a
// prometheus.Collector. Dotted metric names are exported with underscores.
type Prometheus struct {
	registry      *prometheus.Registry
	timingBuckets []float64
	valueBuckets  []float64
	maxMembers    int

	mu       sync.Mutex
	families map[string]*family
}

// family is one exported metric name with a fixed kind and label set.
type family struct {
	desc       *prometheus.Desc
	kind       familyKind
	labelNames []string
	buckets    []float64
	series     map[string]*series
}

// series holds the state of one label value combination.
type series struct {
	labelValues []string
	value       float64
	count       uint64
	sum         float64
	cumulative  []uint64
	members     map[string]struct{}
}

// prometheusCollector adapts the client to prometheus.Collector.
type prometheusCollector struct {
	client *Prometheus
}

// NewPrometheus creates a client and registers its collector.
func NewPrometheus(opts PrometheusOptions) (*Prometheus, error) {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	timingBuckets := opts.TimingBuckets
	if len(timingBuckets) == 0 {
		timingBuckets = prometheus.DefBuckets
	}
	valueBuckets := opts.ValueBuckets
	if len(valueBuckets) == 0 {
		valueBuckets = DefaultValueBuckets
	}

	maxMembers := opts.MaxSetMembers
	if maxMembers <= 0 {
		maxMembers = DefaultMaxSetMembers
	}

	p := &Prometheus{
		registry:      registry,
		timingBuckets: sortedCopy(timingBuckets),
		valueBuckets:  sortedCopy(valueBuckets),
		maxMembers:    maxMembers,
		families:      make(map[string]*family),
	}

	if err := registry.Register(&prometheusCollector{client: p}); err != nil {
		return nil, fmt.Errorf("failed to register collector: %w", err)
	}

	return p, nil
}

// Registry returns the registry the client's collector is registered with.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) Increment(name string, args ...any) {
	s, err := parseCounter(args)
	if err != nil {
		dropped("increment", name, err)
		return
	}
	p.add(name, s)
}

func (p *Prometheus) Decrement(name string, args ...any) {
	s, err := parseCounter(args)
	if err != nil {
		dropped("decrement", name, err)
		return
	}
	s.value = -s.value
	p.add(name, s)
}

func (p *Prometheus) UpdateStats(name string, args ...any) {
	s, err := parseDelta(args)
	if err != nil {
		dropped("update_stats", name, err)
		return
	}
	p.add(name, s)
}

func (p *Prometheus) Timing(name string, args ...any) {
	s, err := parseDuration(args, time.Millisecond)
	if err != nil {
		dropped("timing", name, err)
		return
	}
	p.observe(name, familyTiming, s)
}

func (p *Prometheus) Microtiming(name string, args ...any) {
	s, err := parseDuration(args, time.Second)
	if err != nil {
		dropped("microtiming", name, err)
		return
	}
	p.observe(name, familyTiming, s)
}

func (p *Prometheus) Gauge(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("gauge", name, err)
		return
	}
	p.update(PrometheusName(name), familyGauge, name, s.tags, func(_ *family, ser *series) {
		ser.value = s.value
	})
}

func (p *Prometheus) Histogram(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("histogram", name, err)
		return
	}
	p.observe(name, familyHistogram, s)
}

func (p *Prometheus) Distribution(name string, args ...any) {
	s, err := parseValue(args)
	if err != nil {
		dropped("distribution", name, err)
		return
	}
	p.observe(name, familyHistogram, s)
}

func (p *Prometheus) Set(name string, args ...any) {
	s, err := parseMember(args)
	if err != nil {
		dropped("set", name, err)
		return
	}
	p.update(PrometheusName(name)+setSuffix, familySet, name, s.tags, func(_ *family, ser *series) {
		if ser.members == nil {
			ser.members = make(map[string]struct{})
		}
		if _, seen := ser.members[s.member]; !seen && len(ser.members) >= p.maxMembers {
			slog.Debug("dropped set member over cardinality limit", "name", name, "limit", p.maxMembers)
			return
		}
		ser.members[s.member] = struct{}{}
	})
}

func (p *Prometheus) add(name string, s sample) {
	p.update(PrometheusName(name)+countSuffix, familyCount, name, s.tags, func(_ *family, ser *series) {
		ser.value += s.value
	})
}

func (p *Prometheus) observe(name string, kind familyKind, s sample) {
	p.update(PrometheusName(name), kind, name, s.tags, func(fam *family, ser *series) {
		ser.count++
		ser.sum += s.value
		for i, bound := range fam.buckets {
			if s.value <= bound {
				ser.cumulative[i]++
			}
		}
	})
}

// update applies fn to the series of (exported, tags), creating the family
// on first use. Calls that conflict with an existing family's kind, label
// names or histogram series names are dropped.
func (p *Prometheus) update(exported string, kind familyKind, name string, tags Tags, fn func(*family, *series)) {
	labelNames, labelValues := labelPairs(tags)

	p.mu.Lock()
	defer p.mu.Unlock()

	fam, exists := p.families[exported]
	if !exists {
		if clash, ok := p.suffixCollision(exported, kind); ok {
			slog.Debug("dropped metric colliding with histogram series", "name", exported, "type", kind, "existing", clash)
			return
		}
		fam = p.newFamily(exported, kind, name, labelNames)
		p.families[exported] = fam
		slog.Debug("registered prometheus metric", "name", exported, "type", kind, "labels", labelNames)
	}

	if fam.kind != kind {
		slog.Debug("dropped metric with conflicting type", "name", exported, "type", kind, "existing", fam.kind)
		return
	}
	if !equalStrings(fam.labelNames, labelNames) {
		slog.Debug("dropped metric with conflicting labels", "name", exported, "labels", labelNames, "existing", fam.labelNames)
		return
	}

	key := strings.Join(labelValues, "\xff")
	ser, ok := fam.series[key]
	if !ok {
		ser = &series{labelValues: labelValues}
		if fam.buckets != nil {
			ser.cumulative = make([]uint64, len(fam.buckets))
		}
		fam.series[key] = ser
	}

	fn(fam, ser)
}

// suffixCollision reports the existing family whose exposed series names
// clash with a new family exported under kind.
func (p *Prometheus) suffixCollision(exported string, kind familyKind) (string, bool) {
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(exported, suffix); ok {
			if fam, exists := p.families[base]; exists && fam.kind.histogram() {
				return base, true
			}
		}
		if kind.histogram() {
			if _, exists := p.families[exported+suffix]; exists {
				return exported + suffix, true
			}
		}
	}
	return "", false
}

func (k familyKind) histogram() bool {
	return k == familyTiming || k == familyHistogram
}

func (p *Prometheus) newFamily(exported string, kind familyKind, name string, labelNames []string) *family {
	fam := &family{
		desc: prometheus.NewDesc(
			exported,
			description(kind, name),
			labelNames,
			nil, // No constant labels
		),
		kind:       kind,
		labelNames: labelNames,
		series:     make(map[string]*series),
	}

	switch kind {
	case familyTiming:
		fam.buckets = p.timingBuckets
	case familyHistogram:
		fam.buckets = p.valueBuckets
	}

	return fam
}

// Describe sends no descriptors, making the collector unchecked: families
// appear as calls arrive.
func (c *prometheusCollector) Describe(chan<- *prometheus.Desc) {}

// Collect exports the current state of every series.
func (c *prometheusCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.client

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, fam := range p.families {
		for _, ser := range fam.series {
			m, err := fam.metric(ser)
			if err != nil {
				slog.Debug("failed to build prometheus metric", "error", err)
				continue
			}
			ch <- m
		}
	}
}

func (f *family) metric(ser *series) (prometheus.Metric, error) {
	switch f.kind {
	case familyCount:
		return prometheus.NewConstMetric(f.desc, prometheus.UntypedValue, ser.value, ser.labelValues...)
	case familyGauge:
		return prometheus.NewConstMetric(f.desc, prometheus.GaugeValue, ser.value, ser.labelValues...)
	case familySet:
		return prometheus.NewConstMetric(f.desc, prometheus.GaugeValue, float64(len(ser.members)), ser.labelValues...)
	case familyTiming, familyHistogram:
		buckets := make(map[float64]uint64, len(f.buckets))
		for i, bound := range f.buckets {
			buckets[bound] = ser.cumulative[i]
		}
		return prometheus.NewConstHistogram(f.desc, ser.count, ser.sum, buckets, ser.labelValues...)
	default:
		return nil, fmt.Errorf("unknown family kind %q", f.kind)
	}
}

// PrometheusName converts a dotted metric name to a valid Prometheus name.
func PrometheusName(name string) string {
	return sanitize(name, true)
}

// sanitize replaces characters outside [a-zA-Z0-9_] (plus ':' for metric
// names) with '_' and guards a leading digit.
func sanitize(s string, allowColon bool) string {
	var b strings.Builder
	b.Grow(len(s) + 1)
	for i, r := range s {
		valid := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0) ||
			(r == ':' && allowColon)
		switch {
		case valid:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// labelPairs returns sanitized label names in sorted order with matching values.
func labelPairs(tags Tags) ([]string, []string) {
	if len(tags) == 0 {
		return nil, nil
	}
	keys := tags.Keys()
	names := make([]string, len(keys))
	values := make([]string, len(keys))
	for i, k := range keys {
		names[i] = sanitize(k, false)
		values[i] = tags[k]
	}
	return names, values
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	sort.Float64s(out)
	return out
}

func dropped(op, name string, err error) {
	slog.Debug("dropped metric call", "op", op, "name", name, "error", err)
}
