package amino

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prefix     string
		wantPrefix string
	}{
		{name: "custom prefix", prefix: "/", wantPrefix: "/"},
		{name: "default prefix", prefix: "", wantPrefix: "!"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig("", "http://127.0.0.1:8080", tt.prefix)
			require.Equal(t, tt.wantPrefix, cfg.CommandPrefix)
			require.Equal(t, "http://127.0.0.1:8080", cfg.ProxyURL)
			require.Equal(t, DefaultConfig().APIURL, cfg.APIURL)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CachePath = t.TempDir() + "/cache.json"

	c, err := New(Options{Config: cfg})
	require.NoError(t, err)
	require.Len(t, c.DeviceID(), 82)
	require.Empty(t, c.UserID())
	require.NoError(t, c.Close())
}

func TestNewRejectsBadProxy(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Config: NewConfig("", "::not a proxy", "")})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	for _, debug := range []bool{true, false} {
		l, err := NewLogger(debug)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}
