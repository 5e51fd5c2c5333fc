package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/aminokit/internal/websocket"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "https://service.aminoapps.com/api/v1", cfg.APIURL)
	require.Equal(t, 120*time.Second, cfg.ReconnectInterval)
	require.Equal(t, 3, cfg.HandshakeAttempts)
	require.Equal(t, 43200*time.Second, cfg.SIDMaxAge)
	require.Equal(t, 1209600*time.Second, cfg.SecretMaxAge)
	require.Equal(t, ".ed.cache", cfg.CachePath)
	require.False(t, cfg.RateLimit().Enabled)
}

func TestApply(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.Apply(mapLookup(map[string]string{
		"AMINO_API_URL":            "http://localhost:8080/api/v1",
		"AMINO_WS_URL":             "ws://localhost:8081",
		"AMINO_PROXY":              "http://proxy:3128",
		"AMINO_HTTP_TIMEOUT":       "30s",
		"AMINO_RECONNECT_INTERVAL": "60",
		"AMINO_SID_MAX_AGE":        "1h",
		"AMINO_COMMAND_PREFIX":     "/",
		"AMINO_NDC_ID":             "12345",
		"AMINO_WS_RATE":            "2.5",
		"AMINO_WS_BURST":           "5",
		"AMINO_DEBUG":              "true",
		"AMINO_CACHE_PATH":         "  ",
	}))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080/api/v1", cfg.APIURL)
	require.Equal(t, "ws://localhost:8081", cfg.WSURL)
	require.Equal(t, "http://proxy:3128", cfg.ProxyURL)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 60*time.Second, cfg.ReconnectInterval)
	require.Equal(t, time.Hour, cfg.SIDMaxAge)
	require.Equal(t, "/", cfg.CommandPrefix)
	require.Equal(t, 12345, cfg.NdcID)
	require.True(t, cfg.Debug)

	// Blank values keep the default.
	require.Equal(t, ".ed.cache", cfg.CachePath)

	rl := cfg.RateLimit()
	require.Equal(t, &websocket.RateLimitConfig{MessagesPerSecond: 2.5, Burst: 5, Enabled: true}, rl)
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"AMINO_HTTP_TIMEOUT": "soon"}},
		{name: "bad int", env: map[string]string{"AMINO_NDC_ID": "x12"}},
		{name: "bad bool", env: map[string]string{"AMINO_DEBUG": "maybe"}},
		{name: "bad float", env: map[string]string{"AMINO_WS_RATE": "fast"}},
		{name: "http gateway url", env: map[string]string{"AMINO_WS_URL": "https://ws1.aminoapps.com"}},
		{name: "zero reconnect", env: map[string]string{"AMINO_RECONNECT_INTERVAL": "0"}},
		{name: "relative api url", env: map[string]string{"AMINO_API_URL": "service/api"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, Default().Apply(mapLookup(tt.env)))
		})
	}
}

func TestRateLimitBurstDefaultsToOne(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.WSRate = 10
	require.Equal(t, 1, cfg.RateLimit().Burst)
}

// Load touches the process environment, so these tests do not run in parallel.

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.env")
	require.NoError(t, os.WriteFile(path, []byte("AMINO_COMMAND_PREFIX=?\nAMINO_NDC_ID=77\n"), 0o600))

	t.Setenv("AMINO_COMMAND_PREFIX", "")
	t.Setenv("AMINO_NDC_ID", "99")
	require.NoError(t, os.Unsetenv("AMINO_COMMAND_PREFIX"))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "?", cfg.CommandPrefix)
	// The process environment wins over the file.
	require.Equal(t, 99, cfg.NdcID)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("AMINO_DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Debug)
}
