package client

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/cache"
	"github.com/luciancaetano/aminokit/internal/sid"
)

// Login signs in with an email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*aminokit.Auth, error) {
	return c.LoginSecret(ctx, email, "0 "+password)
}

// LoginSecret signs in with an email and a login secret, either a secret
// returned by an earlier login or "0 <password>".
func (c *Client) LoginSecret(ctx context.Context, email, secret string) (*aminokit.Auth, error) {
	payload := map[string]any{
		"email":      email,
		"secret":     secret,
		"clientType": aminokit.ClientType,
		"deviceID":   c.DeviceID(),
		"action":     "normal",
		"v":          2,
	}

	var auth aminokit.Auth
	if err := c.post(ctx, aminokit.GlobalNdcID, "/auth/login", payload, &auth); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := c.setAuth(&auth); err != nil {
		return nil, err
	}

	c.logger.Info("logged in", zap.String("auid", auth.AUID))
	return &auth, nil
}

// LoginSID restores a session from a SID and fetches the account profile.
func (c *Client) LoginSID(ctx context.Context, token string) (*aminokit.Auth, error) {
	decoded, err := sid.Decode(token)
	if err != nil {
		return nil, err
	}

	c.identity.SetSession(token, decoded.UserID)

	var resp struct {
		Profile aminokit.UserProfile `json:"userProfile"`
	}
	if err := c.get(ctx, aminokit.GlobalNdcID, "/user-profile/"+url.PathEscape(decoded.UserID), nil, &resp); err != nil {
		c.identity.Clear()
		return nil, fmt.Errorf("login with sid: %w", err)
	}

	auth := &aminokit.Auth{
		AUID:     decoded.UserID,
		SID:      token,
		DeviceID: c.DeviceID(),
		User:     &resp.Profile,
	}
	if err := c.setAuth(auth); err != nil {
		return nil, err
	}
	return auth, nil
}

// LoginCached reuses the credentials cached for email while the SID is fresh,
// falls back to the cached secret while that is fresh, and logs in with the
// password otherwise. New credentials are written back to the cache.
func (c *Client) LoginCached(ctx context.Context, email, password string) (*aminokit.Auth, error) {
	if entry, ok := c.cache.Get(email); ok {
		if entry.DeviceID != "" {
			if err := c.adoptDeviceID(entry.DeviceID); err != nil {
				c.logger.Warn("ignoring cached device id", zap.Error(err))
			}
		}

		now := c.now()
		if expired, err := sid.IsExpired(entry.SID, c.cfg.SIDMaxAge, now); err == nil && !expired {
			auth, err := c.LoginSID(ctx, entry.SID)
			if err == nil {
				return auth, nil
			}
			c.logger.Warn("cached sid rejected", zap.Error(err))
		}

		if expired, err := sid.SecretExpired(entry.Secret, c.cfg.SecretMaxAge, now); err == nil && !expired {
			auth, err := c.LoginSecret(ctx, email, entry.Secret)
			if err == nil {
				c.storeCredentials(email, auth)
				return auth, nil
			}
			c.logger.Warn("cached secret rejected", zap.Error(err))
		}
	}

	auth, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.storeCredentials(email, auth)
	return auth, nil
}

func (c *Client) storeCredentials(email string, auth *aminokit.Auth) {
	secret := auth.Secret
	if secret == "" {
		c.session.mu.RLock()
		secret = c.session.secret
		c.session.mu.RUnlock()
	}

	err := c.cache.Put(email, cache.Entry{
		SID:      auth.SID,
		Secret:   secret,
		DeviceID: c.DeviceID(),
		UID:      auth.AUID,
	})
	if err != nil {
		c.logger.Warn("failed to cache credentials", zap.Error(err))
	}
}

func (c *Client) adoptDeviceID(id string) error {
	updated, err := resolveDeviceID(id)
	if err != nil {
		return err
	}
	c.identity.SetDeviceID(updated)
	return nil
}

// Logout ends the session on the server and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	payload := map[string]any{
		"deviceID":   c.DeviceID(),
		"clientType": aminokit.ClientType,
	}
	if err := c.post(ctx, aminokit.GlobalNdcID, "/auth/logout", payload, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	c.identity.Clear()
	c.session.mu.Lock()
	c.session.sid = nil
	c.session.secret = ""
	c.session.account = nil
	c.session.profile = nil
	c.session.mu.Unlock()
	return nil
}

// Register creates an account. code is the email verification code from
// RequestVerifyCode; it may be empty when the server does not require one.
func (c *Client) Register(ctx context.Context, nickname, email, password, code string) (*aminokit.Auth, error) {
	payload := map[string]any{
		"secret":     "0 " + password,
		"deviceID":   c.DeviceID(),
		"email":      email,
		"clientType": aminokit.ClientType,
		"nickname":   nickname,
		"latitude":   0,
		"longitude":  0,
		"address":    nil,
		"type":       1,
		"identity":   email,
	}
	if code != "" {
		payload["validationContext"] = validationContext(email, code)
	}

	var auth aminokit.Auth
	if err := c.post(ctx, aminokit.GlobalNdcID, "/auth/register", payload, &auth); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &auth, nil
}

// RequestVerifyCode asks the server to email a verification code.
func (c *Client) RequestVerifyCode(ctx context.Context, email string, resetPassword bool) error {
	payload := map[string]any{
		"type":     1,
		"identity": email,
		"deviceID": c.DeviceID(),
	}
	if resetPassword {
		payload["level"] = 2
		payload["purpose"] = "reset-password"
	}
	return c.post(ctx, aminokit.GlobalNdcID, "/auth/request-security-validation", payload, nil)
}

// Verify checks an email verification code.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	payload := map[string]any{
		"validationContext": validationContext(email, code),
		"deviceID":          c.DeviceID(),
	}
	return c.post(ctx, aminokit.GlobalNdcID, "/auth/check-security-validation", payload, nil)
}

// CheckDevice registers deviceID with the service.
func (c *Client) CheckDevice(ctx context.Context, deviceID string) error {
	payload := map[string]any{
		"deviceID":          deviceID,
		"bundleID":          "com.narvii.amino.master",
		"clientType":        aminokit.ClientType,
		"timezone":          0,
		"systemPushEnabled": true,
		"locale":            c.cfg.Language,
	}
	return c.post(ctx, aminokit.GlobalNdcID, "/device", payload, nil)
}

func validationContext(email, code string) map[string]any {
	return map[string]any{
		"type":     1,
		"identity": email,
		"data":     map[string]any{"code": code},
	}
}

// setAuth installs a new session on the client and its socket.
func (c *Client) setAuth(auth *aminokit.Auth) error {
	decoded, err := sid.Decode(auth.SID)
	if err != nil {
		return fmt.Errorf("login returned %w", err)
	}
	if auth.AUID == "" {
		auth.AUID = decoded.UserID
	}
	auth.DeviceID = c.DeviceID()

	c.identity.SetSession(auth.SID, auth.AUID)

	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.sid = decoded
	if auth.Secret != "" {
		c.session.secret = auth.Secret
	}
	if auth.Account != nil {
		c.session.account = auth.Account
	}
	if auth.User != nil {
		c.session.profile = auth.User
	}
	return nil
}
