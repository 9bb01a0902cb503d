// Package client provides in-process implementations of the metrics client
// used by statbox services.
//
// All clients accept the loosely typed DogStatsD argument lists:
//
//	Increment(name, sampleRate?, tags?, value?)
//	Decrement(name, sampleRate?, tags?, value?)
//	Timing(name, milliseconds, sampleRate?, tags?)
//	Microtiming(name, seconds, sampleRate?, tags?)
//	Gauge(name, value, sampleRate?, tags?)
//	Histogram(name, value, sampleRate?, tags?)
//	Distribution(name, value, sampleRate?, tags?)
//	Set(name, member, sampleRate?, tags?)
//	UpdateStats(name, delta?, sampleRate?, tags?)
//
// Arguments past that set are ignored. Sample rates are parsed but not
// applied, since aggregation happens in-process and sees every call.
package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Tags is a normalized tag set.
type Tags map[string]string

// Keys returns the tag keys, sorted.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders tags as "k:v,k2:v2" in key order.
func (t Tags) String() string {
	keys := t.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + t[k]
	}
	return strings.Join(parts, ",")
}

// sample is a parsed call.
type sample struct {
	value      float64
	member     string
	sampleRate float64
	tags       Tags
}

// parseCounter parses (sampleRate?, tags?, value?) with value defaulting to 1.
func parseCounter(args []any) (sample, error) {
	s := sample{value: 1, sampleRate: 1}
	var err error
	if len(args) > 0 {
		if s.sampleRate, err = parseSampleRate(args[0]); err != nil {
			return s, err
		}
	}
	if len(args) > 1 {
		if s.tags, err = ParseTags(args[1]); err != nil {
			return s, err
		}
	}
	if len(args) > 2 {
		v, ok := toFloat(args[2])
		if !ok {
			return s, fmt.Errorf("invalid value %v (%T)", args[2], args[2])
		}
		s.value = v
	}
	return s, nil
}

// parseDelta parses (delta?, sampleRate?, tags?) with delta defaulting to 1.
func parseDelta(args []any) (sample, error) {
	s := sample{value: 1, sampleRate: 1}
	if len(args) > 0 {
		v, ok := toFloat(args[0])
		if !ok {
			return s, fmt.Errorf("invalid delta %v (%T)", args[0], args[0])
		}
		s.value = v
	}
	return parseRateAndTags(s, args, 1)
}

// parseValue parses (value, sampleRate?, tags?).
func parseValue(args []any) (sample, error) {
	s := sample{sampleRate: 1}
	if len(args) == 0 {
		return s, errors.New("missing value")
	}
	v, ok := toFloat(args[0])
	if !ok {
		return s, fmt.Errorf("invalid value %v (%T)", args[0], args[0])
	}
	s.value = v
	return parseRateAndTags(s, args, 1)
}

// parseMember parses (member, sampleRate?, tags?).
func parseMember(args []any) (sample, error) {
	s := sample{sampleRate: 1}
	if len(args) == 0 {
		return s, errors.New("missing member")
	}
	s.member = fmt.Sprint(args[0])
	return parseRateAndTags(s, args, 1)
}

// parseDuration parses (time, sampleRate?, tags?) and converts time to
// seconds. Plain numbers are scaled by unit; time.Duration values are exact.
func parseDuration(args []any, unit time.Duration) (sample, error) {
	s := sample{sampleRate: 1}
	if len(args) == 0 {
		return s, errors.New("missing time")
	}
	switch d := args[0].(type) {
	case time.Duration:
		s.value = d.Seconds()
	default:
		v, ok := toFloat(d)
		if !ok {
			return s, fmt.Errorf("invalid time %v (%T)", args[0], args[0])
		}
		s.value = v * unit.Seconds()
	}
	return parseRateAndTags(s, args, 1)
}

func parseRateAndTags(s sample, args []any, offset int) (sample, error) {
	var err error
	if len(args) > offset {
		if s.sampleRate, err = parseSampleRate(args[offset]); err != nil {
			return s, err
		}
	}
	if len(args) > offset+1 {
		if s.tags, err = ParseTags(args[offset+1]); err != nil {
			return s, err
		}
	}
	return s, nil
}

func parseSampleRate(arg any) (float64, error) {
	if arg == nil {
		return 1, nil
	}
	rate, ok := toFloat(arg)
	if !ok {
		return 0, fmt.Errorf("invalid sample rate %v (%T)", arg, arg)
	}
	if rate <= 0 || rate > 1 {
		return 0, fmt.Errorf("sample rate %v out of range (0, 1]", rate)
	}
	return rate, nil
}

// ParseTags normalizes the tag forms accepted by the DogStatsD client:
// map[string]string, map[string]any, []string{"k:v"} and "k:v,k2:v2".
// Entries without a value map to an empty string.
func ParseTags(arg any) (Tags, error) {
	switch t := arg.(type) {
	case nil:
		return nil, nil
	case Tags:
		return t, nil
	case map[string]string:
		return Tags(t), nil
	case map[string]any:
		tags := make(Tags, len(t))
		for k, v := range t {
			if v == nil {
				tags[k] = ""
				continue
			}
			tags[k] = fmt.Sprint(v)
		}
		return tags, nil
	case []string:
		tags := make(Tags, len(t))
		for _, pair := range t {
			addTag(tags, pair)
		}
		return tags, nil
	case string:
		tags := make(Tags)
		for _, pair := range strings.Split(t, ",") {
			addTag(tags, pair)
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("invalid tags %v (%T)", arg, arg)
	}
}

func addTag(tags Tags, pair string) {
	pair = strings.TrimSpace(pair)
	if pair == "" {
		return
	}
	k, v, _ := strings.Cut(pair, ":")
	tags[k] = v
}

// toFloat converts any numeric value, or a numeric string, to float64.
// nil and booleans are rejected, unlike cast's defaults.
func toFloat(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
