package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-i", "10", "-r", "3", "-f", "c.db", "-n", "1500"},
			expected: &Config{
				ServerEndpointAddr: "127.0.0.1:9090",
				ReconcileInterval:  10 * time.Second,
				RPCTimeout:         3 * time.Second,
				CachePath:          "c.db",
				EnrichmentBudget:   1500 * time.Millisecond,
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-x", "1", "-a", ":1", "-verbose"},
			expected: &Config{ServerEndpointAddr: ":1"},
		},
		{
			name:        "incorrect interval",
			args:        []string{"-a", "127.0.0.1:9090", "-i", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
