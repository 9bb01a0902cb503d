package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotted(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		in   string
		want string
	}{
		{name: "underscore preserved", in: "NetaxeptRegistration_failed", want: "netaxept.registration_failed"},
		{name: "camel case", in: "NetaxeptRegistrationFailed", want: "netaxept.registration.failed"},
		{name: "three segments", in: "AuthorisationMissingSession", want: "authorisation.missing.session"},
		{name: "single segment", in: "Flow", want: "flow"},
		{name: "lower camel", in: "flowStart", want: "flow.start"},
		{name: "acronym", in: "HTTPServerError", want: "http.server.error"},
		{name: "leading acronym", in: "ABTest", want: "ab.test"},
		{name: "digit before upper", in: "Http2Server", want: "http2.server"},
		{name: "digits inside word", in: "Api2fa", want: "api2fa"},
		{name: "already dotted", in: "cache.hit.ratio", want: "cache.hit.ratio"},
		{name: "dotted with capitals", in: "Cache.HitRatio", want: "cache.hit.ratio"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Dotted(tc.in))
		})
	}
}

func TestDottedIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"NetaxeptRegistration_failed", "HTTPServerError", "Http2Server", "a.b_c.d"} {
		once := Dotted(in)
		assert.Equal(t, once, Dotted(once), "input %q", in)
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "custom_prefix.subscribe.failed", FullName("custom_prefix", "SubscribeFailed"))
	assert.Equal(t, ".subscribe.failed", FullName("", "SubscribeFailed"))
}

func TestParseMethodID(t *testing.T) {
	t.Parallel()

	tt := []struct {
		id       string
		wantKind Kind
		wantName string
		wantErr  bool
	}{
		{id: "incNetaxeptRegistration_failed", wantKind: KindIncrement, wantName: "NetaxeptRegistration_failed"},
		{id: "decAuthorisationMissingSession", wantKind: KindDecrement, wantName: "AuthorisationMissingSession"},
		{id: "timSubscribeFailed", wantKind: KindTiming, wantName: "SubscribeFailed"},
		{id: "micSubscribeFailed", wantKind: KindMicrotiming, wantName: "SubscribeFailed"},
		{id: "gauQueueDepth", wantKind: KindGauge, wantName: "QueueDepth"},
		{id: "hisPayloadSize", wantKind: KindHistogram, wantName: "PayloadSize"},
		{id: "disLatency", wantKind: KindDistribution, wantName: "Latency"},
		{id: "setUniqueVisitors", wantKind: KindSet, wantName: "UniqueVisitors"},
		{id: "updBytesSent", wantKind: KindUpdateDelta, wantName: "BytesSent"},
		{id: "flowStart", wantErr: true},
		{id: "inc", wantErr: true},
		{id: "", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.id, func(t *testing.T) {
			t.Parallel()

			kind, name, err := ParseMethodID(tc.id)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, tc.id, MethodID(kind, name))
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		byName, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, byName)

		byTag, err := ParseKind(k.Tag())
		require.NoError(t, err)
		assert.Equal(t, k, byTag)
	}

	_, err := ParseKind("counter")
	assert.Error(t, err)
}

func TestKindMinArgs(t *testing.T) {
	t.Parallel()

	optional := map[Kind]bool{KindIncrement: true, KindDecrement: true, KindUpdateDelta: true}
	for _, k := range Kinds() {
		want := 1
		if optional[k] {
			want = 0
		}
		assert.Equal(t, want, k.MinArgs(), "kind %s", k)
	}
}
