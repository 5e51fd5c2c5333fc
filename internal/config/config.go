// Package config loads client settings from defaults, an optional .env file
// and AMINO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/aminokit/internal/cache"
	"github.com/luciancaetano/aminokit/internal/sid"
	"github.com/luciancaetano/aminokit/internal/transport"
	"github.com/luciancaetano/aminokit/internal/websocket"
)

type Config struct {
	// APIURL is the REST base URL, including the /api/v1 prefix.
	APIURL string
	// WSURL is the gateway URL.
	WSURL string
	// DeviceID is the device id to sign requests with. A random one is
	// generated when empty.
	DeviceID string
	// ProxyURL routes REST and gateway traffic through an HTTP proxy.
	ProxyURL string
	// UserAgent and Language are sent with every REST request.
	UserAgent string
	Language  string

	HTTPTimeout       time.Duration
	ReconnectInterval time.Duration
	HandshakeAttempts int
	HandshakeBackoff  time.Duration

	// SIDMaxAge and SecretMaxAge bound how long cached credentials are reused.
	SIDMaxAge    time.Duration
	SecretMaxAge time.Duration

	CachePath string
	// CommandPrefix is prepended to bot command names.
	CommandPrefix string
	// NdcID is the community selected at startup (0 for global).
	NdcID int

	// WSRate and WSBurst throttle outbound gateway frames; 0 disables it.
	WSRate  float64
	WSBurst int

	// Debug enables development logging, including request dumps.
	Debug bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:            transport.DefaultBaseURL,
		WSURL:             websocket.DefaultURL,
		UserAgent:         transport.DefaultUserAgent,
		Language:          transport.DefaultLanguage,
		HTTPTimeout:       10 * time.Second,
		ReconnectInterval: websocket.DefaultReconnectInterval,
		HandshakeAttempts: websocket.DefaultHandshakeAttempts,
		HandshakeBackoff:  websocket.DefaultHandshakeBackoff,
		SIDMaxAge:         sid.DefaultMaxAge,
		SecretMaxAge:      sid.DefaultSecretMaxAge,
		CachePath:         cache.DefaultPath,
		CommandPrefix:     "!",
	}
}

// Load reads the given .env files (".env" when none are given, ignored if
// missing) into the process environment and applies AMINO_* variables over
// the defaults. Variables already set in the environment win over .env files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", strings.Join(files, ", "), err)
	}

	cfg := Default()
	if err := cfg.Apply(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides c with the AMINO_* variables lookup returns.
func (c *Config) Apply(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.str("AMINO_API_URL", &c.APIURL)
	env.str("AMINO_WS_URL", &c.WSURL)
	env.str("AMINO_DEVICE_ID", &c.DeviceID)
	env.str("AMINO_PROXY", &c.ProxyURL)
	env.str("AMINO_USER_AGENT", &c.UserAgent)
	env.str("AMINO_LANGUAGE", &c.Language)
	env.str("AMINO_CACHE_PATH", &c.CachePath)
	env.str("AMINO_COMMAND_PREFIX", &c.CommandPrefix)
	env.duration("AMINO_HTTP_TIMEOUT", &c.HTTPTimeout)
	env.duration("AMINO_RECONNECT_INTERVAL", &c.ReconnectInterval)
	env.duration("AMINO_HANDSHAKE_BACKOFF", &c.HandshakeBackoff)
	env.duration("AMINO_SID_MAX_AGE", &c.SIDMaxAge)
	env.duration("AMINO_SECRET_MAX_AGE", &c.SecretMaxAge)
	env.integer("AMINO_HANDSHAKE_ATTEMPTS", &c.HandshakeAttempts)
	env.integer("AMINO_NDC_ID", &c.NdcID)
	env.integer("AMINO_WS_BURST", &c.WSBurst)
	env.float("AMINO_WS_RATE", &c.WSRate)
	env.boolean("AMINO_DEBUG", &c.Debug)

	if err := errors.Join(env.errs...); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks c for values no client can run with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid API URL %q: %w", c.APIURL, err))
	}
	if u, err := url.Parse(c.WSURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("invalid gateway URL %q", c.WSURL))
	}
	if c.ProxyURL != "" {
		if _, err := url.Parse(c.ProxyURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid proxy URL %q: %w", c.ProxyURL, err))
		}
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("HTTP timeout must not be negative"))
	}
	if c.ReconnectInterval <= 0 {
		errs = append(errs, fmt.Errorf("reconnect interval must be positive"))
	}
	if c.HandshakeAttempts <= 0 {
		errs = append(errs, fmt.Errorf("handshake attempts must be positive"))
	}
	if c.SIDMaxAge <= 0 || c.SecretMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("credential max ages must be positive"))
	}
	if c.WSRate < 0 || c.WSBurst < 0 {
		errs = append(errs, fmt.Errorf("gateway rate limit must not be negative"))
	}

	return errors.Join(errs...)
}

// RateLimit returns the outbound gateway limiter settings.
func (c *Config) RateLimit() *websocket.RateLimitConfig {
	if c.WSRate <= 0 {
		return websocket.NoRateLimit()
	}
	burst := c.WSBurst
	if burst <= 0 {
		burst = 1
	}
	return &websocket.RateLimitConfig{
		MessagesPerSecond: rate.Limit(c.WSRate),
		Burst:             burst,
		Enabled:           true,
	}
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return
	}
	*dst = d
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return
	}
	*dst = f
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return
	}
	*dst = b
}
