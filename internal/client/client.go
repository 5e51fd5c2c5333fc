// Package client implements an Amino session: login and credential caching,
// the REST endpoint wrappers, and the bot layer on top of the event socket.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/cache"
	"github.com/luciancaetano/aminokit/internal/config"
	"github.com/luciancaetano/aminokit/internal/logger"
	"github.com/luciancaetano/aminokit/internal/signing"
	"github.com/luciancaetano/aminokit/internal/transport"
	"github.com/luciancaetano/aminokit/internal/websocket"
)

// Options configures a Client.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	Logger *zap.Logger
	// HTTPClient overrides the client built from Config.
	HTTPClient aminokit.Doer
	// Dialer overrides the gateway dialer built from Config.
	Dialer aminokit.Dialer
	// SyncEvents runs event handlers on the receive loop instead of a
	// goroutine per event.
	SyncEvents bool
}

// session is the login state shared by a client and its proxied copies.
type session struct {
	mu      sync.RWMutex
	sid     *aminokit.SID
	secret  string
	account *aminokit.Account
	profile *aminokit.UserProfile
}

// Client is an Amino session.
type Client struct {
	cfg       *config.Config
	logger    *zap.Logger
	identity  *transport.Identity
	requester *transport.Requester
	socket    *websocket.Socket
	emitter   *websocket.Emitter
	cache     *cache.File
	session   *session
	bot       *bot
	now       func() time.Time

	ndcID atomic.Int64
}

func New(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	deviceID, err := resolveDeviceID(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	doer := opts.HTTPClient
	if doer == nil {
		hc, err := newHTTPClient(cfg.ProxyURL, cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		doer = hc
	}

	dialer := opts.Dialer
	if dialer == nil {
		d, err := newDialer(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		dialer = d
	}

	identity := transport.NewIdentity(deviceID)
	requester := transport.NewRequester(doer, identity, transport.Options{
		BaseURL:   cfg.APIURL,
		UserAgent: cfg.UserAgent,
		Language:  cfg.Language,
		Logger:    logger.Named(log, "http"),
	})

	emitter := websocket.NewEmitter(logger.Named(log, "events"), !opts.SyncEvents)
	socket := websocket.NewSocket(websocket.Options{
		URL:               cfg.WSURL,
		Dialer:            dialer,
		Credentials:       identity.Credentials,
		HandshakeAttempts: cfg.HandshakeAttempts,
		HandshakeBackoff:  cfg.HandshakeBackoff,
		ReconnectInterval: cfg.ReconnectInterval,
		RateLimit:         cfg.RateLimit(),
		Emitter:           emitter,
		Logger:            logger.Named(log, "socket"),
	})

	c := &Client{
		cfg:       cfg,
		logger:    log,
		identity:  identity,
		requester: requester,
		socket:    socket,
		emitter:   emitter,
		cache:     cache.New(cfg.CachePath, logger.Named(log, "cache")),
		session:   &session{},
		bot:       &bot{prefix: cfg.CommandPrefix},
		now:       time.Now,
	}
	c.ndcID.Store(int64(cfg.NdcID))
	return c, nil
}

func resolveDeviceID(id string) (string, error) {
	if id == "" {
		return signing.NewDeviceID()
	}
	updated, err := signing.UpdateDeviceID(id)
	if err != nil {
		return "", fmt.Errorf("configured device id: %w", err)
	}
	return updated, nil
}

// DeviceID returns the device id requests are signed with.
func (c *Client) DeviceID() string {
	return c.identity.DeviceID()
}

// NdcID returns the selected community, 0 for the global API.
func (c *Client) NdcID() int {
	return int(c.ndcID.Load())
}

// SID returns the decoded session token, or nil before login.
func (c *Client) SID() *aminokit.SID {
	c.session.mu.RLock()
	defer c.session.mu.RUnlock()
	return c.session.sid
}

// UserID returns the account id of the session, or "" before login.
func (c *Client) UserID() string {
	_, auid := c.identity.Session()
	return auid
}

// Account returns the account snapshot from the last login.
func (c *Client) Account() *aminokit.Account {
	c.session.mu.RLock()
	defer c.session.mu.RUnlock()
	return c.session.account
}

// Profile returns the global user profile from the last login.
func (c *Client) Profile() *aminokit.UserProfile {
	c.session.mu.RLock()
	defer c.session.mu.RUnlock()
	return c.session.profile
}

// Socket returns the event socket bound to this session.
func (c *Client) Socket() aminokit.EventSocket {
	return c.socket
}

// Close stops the event socket.
func (c *Client) Close() error {
	return c.socket.Close()
}

func (c *Client) requireLogin() (string, error) {
	auid := c.UserID()
	if auid == "" {
		return "", aminokit.ErrNotLoggedIn
	}
	return auid, nil
}

func (c *Client) requireCommunity() (int, error) {
	ndc := c.NdcID()
	if ndc <= 0 {
		return 0, aminokit.ErrNoCommunity
	}
	return ndc, nil
}

func (c *Client) get(ctx context.Context, ndc int, path string, query url.Values, out any) error {
	return c.requester.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		NdcID:  ndc,
		Path:   path,
		Query:  query,
	}, out)
}

// post sends payload as JSON; a nil payload sends no body.
func (c *Client) post(ctx context.Context, ndc int, path string, payload map[string]any, out any) error {
	return c.postQuery(ctx, ndc, path, nil, payload, out)
}

func (c *Client) postQuery(ctx context.Context, ndc int, path string, query url.Values, payload map[string]any, out any) error {
	return c.requester.DoJSON(ctx, transport.Request{
		Method: http.MethodPost,
		NdcID:  ndc,
		Path:   path,
		Query:  query,
		JSON:   payload,
	}, out)
}

func (c *Client) delete(ctx context.Context, ndc int, path string, query url.Values) error {
	return c.requester.DoJSON(ctx, transport.Request{
		Method: http.MethodDelete,
		NdcID:  ndc,
		Path:   path,
		Query:  query,
	}, nil)
}

func paging(start, size int) url.Values {
	if size <= 0 {
		size = 25
	}
	return url.Values{
		"start": {fmt.Sprint(start)},
		"size":  {fmt.Sprint(size)},
	}
}
