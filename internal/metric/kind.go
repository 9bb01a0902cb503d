package metric

import "fmt"

// Kind defines the statistical operation a declared method performs.
type Kind int

const (
	KindIncrement Kind = iota
	KindDecrement
	KindTiming
	KindMicrotiming
	KindGauge
	KindHistogram
	KindDistribution
	KindSet
	KindUpdateDelta
)

// kindSpec holds the fixed properties of a kind.
type kindSpec struct {
	tag     string
	name    string
	minArgs int
}

var kindSpecs = map[Kind]kindSpec{
	KindIncrement:    {tag: "inc", name: "increment", minArgs: 0},
	KindDecrement:    {tag: "dec", name: "decrement", minArgs: 0},
	KindTiming:       {tag: "tim", name: "timing", minArgs: 1},
	KindMicrotiming:  {tag: "mic", name: "microtiming", minArgs: 1},
	KindGauge:        {tag: "gau", name: "gauge", minArgs: 1},
	KindHistogram:    {tag: "his", name: "histogram", minArgs: 1},
	KindDistribution: {tag: "dis", name: "distribution", minArgs: 1},
	KindSet:          {tag: "set", name: "set", minArgs: 1},
	KindUpdateDelta:  {tag: "upd", name: "update_delta", minArgs: 0},
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindIncrement,
		KindDecrement,
		KindTiming,
		KindMicrotiming,
		KindGauge,
		KindHistogram,
		KindDistribution,
		KindSet,
		KindUpdateDelta,
	}
}

// Tag returns the three-letter method prefix of the kind.
func (k Kind) Tag() string {
	return kindSpecs[k].tag
}

// MinArgs returns the number of arguments a call must supply after the metric name.
func (k Kind) MinArgs() int {
	return kindSpecs[k].minArgs
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

func (k Kind) String() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind from its name ("timing") or tag ("tim").
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		spec := kindSpecs[k]
		if s == spec.name || s == spec.tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown metric kind: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown metric kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
