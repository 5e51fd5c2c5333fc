package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	gorilla "github.com/gorilla/websocket"
)

const handshakeTimeout = 45 * time.Second

// parseProxy returns the proxy function for proxyURL, or the environment's
// proxy settings when it is empty.
func parseProxy(proxyURL string) (func(*http.Request) (*url.URL, error), error) {
	if proxyURL == "" {
		return http.ProxyFromEnvironment, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse proxy url: %q is missing a scheme or host", proxyURL)
	}
	return http.ProxyURL(u), nil
}

func newHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	proxy, err := parseProxy(proxyURL)
	if err != nil {
		return nil, err
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = proxy
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

func newDialer(proxyURL string) (*gorilla.Dialer, error) {
	proxy, err := parseProxy(proxyURL)
	if err != nil {
		return nil, err
	}
	return &gorilla.Dialer{
		Proxy:            proxy,
		HandshakeTimeout: handshakeTimeout,
	}, nil
}

// WithProxy runs fn against a copy of c whose REST calls go through
// proxyURL. The copy shares c's session, event socket and bot, so a login
// made through either is visible to both; the selected community is copied
// and later changes on the copy do not affect c.
func (c *Client) WithProxy(proxyURL string, fn func(*Client) error) error {
	if proxyURL == "" {
		return fmt.Errorf("with proxy: empty proxy url")
	}
	hc, err := newHTTPClient(proxyURL, c.cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	clone := &Client{
		cfg:       c.cfg,
		logger:    c.logger,
		identity:  c.identity,
		requester: c.requester.WithDoer(hc),
		socket:    c.socket,
		emitter:   c.emitter,
		cache:     c.cache,
		session:   c.session,
		bot:       c.bot,
		now:       c.now,
	}
	clone.ndcID.Store(c.ndcID.Load())
	return fn(clone)
}
