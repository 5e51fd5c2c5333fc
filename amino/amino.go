// Package amino is the public entry point of aminokit: it builds clients and
// configuration and re-exports the types callers need to use them.
package amino

import (
	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit/internal/client"
	"github.com/luciancaetano/aminokit/internal/config"
	"github.com/luciancaetano/aminokit/internal/logger"
)

type Client = client.Client
type Options = client.Options
type Config = config.Config
type Event = client.Event
type Handler = client.Handler
type Task = client.Task
type ExecuteOptions = client.ExecuteOptions
type LoginOptions = client.LoginOptions
type MessageOptions = client.MessageOptions
type Embed = client.Embed
type ProfileEdit = client.ProfileEdit
type BlogPost = client.BlogPost

// New creates a client. The zero Options use DefaultConfig and no logging.
//
// Example:
//
//	cfg, err := amino.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger, err := amino.NewLogger(cfg.Debug)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := amino.New(amino.Options{Config: cfg, Logger: logger})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c.Command(func(ctx context.Context, ev *amino.Event) {
//	    ev.Reply(ctx, "pong")
//	}, "ping")
//	err = c.Run(ctx, amino.LoginOptions{Email: email, Password: password})
func New(opts Options) (*Client, error) {
	return client.New(opts)
}

// NewConfig returns DefaultConfig with a device id, proxy and command prefix.
// Empty arguments keep the defaults.
func NewConfig(deviceID, proxyURL, commandPrefix string) *Config {
	cfg := config.Default()
	cfg.DeviceID = deviceID
	cfg.ProxyURL = proxyURL
	if commandPrefix != "" {
		cfg.CommandPrefix = commandPrefix
	}
	return cfg
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads the given .env files (".env" when none is given) and the
// AMINO_* environment variables over the defaults.
func LoadConfig(files ...string) (*Config, error) {
	return config.Load(files...)
}

// NewLogger returns the logger aminokit components expect, in development
// format when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	return logger.New(debug)
}
