package main

import (
	"testing"

	"github.com/neox5/statbox/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []string
		want []any
	}{
		{"empty", nil, []any{}},
		{"int", []string{"12345"}, []any{12345}},
		{"float", []string{"0.5"}, []any{0.5}},
		{"nil placeholder", []string{"-", "env:prod"}, []any{nil, client.Tags{"env": "prod"}}},
		{"tags", []string{"1", "env:prod,region:eu"}, []any{1, client.Tags{"env": "prod", "region": "eu"}}},
		{"string", []string{"user-42"}, []any{"user-42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseArgs(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
