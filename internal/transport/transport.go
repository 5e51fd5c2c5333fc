// Package transport implements the signed request layer of the Amino REST API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/signing"
)

const (
	DefaultBaseURL   = "https://service.aminoapps.com/api/v1"
	DefaultUserAgent = "Apple iPhone12,1 iOS v15.5 Main/3.12.2"
	DefaultLanguage  = "en-US"

	headerDeviceID  = "NDCDEVICEID"
	headerAuth      = "NDCAUTH"
	headerSignature = "NDC-MSG-SIG"
	headerAUID      = "AUID"
)

// NdcPath returns the path prefix routing a call to a community or the global
// API. A negative id routes a global call about community |ndc|.
func NdcPath(ndc int) string {
	switch {
	case ndc > 0:
		return "/x" + strconv.Itoa(ndc) + "/s"
	case ndc < 0:
		return "/g/s-x" + strconv.Itoa(-ndc)
	default:
		return "/g/s"
	}
}

// Identity is the device and session a Requester signs requests with. It is
// shared between a client and its proxied clones.
type Identity struct {
	mu       sync.RWMutex
	deviceID string
	sid      string
	auid     string
}

func NewIdentity(deviceID string) *Identity {
	return &Identity{deviceID: deviceID}
}

func (i *Identity) DeviceID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.deviceID
}

func (i *Identity) SetDeviceID(deviceID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deviceID = deviceID
}

// Session returns the current SID and account id; both are empty before login.
func (i *Identity) Session() (sid, auid string) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sid, i.auid
}

func (i *Identity) SetSession(sid, auid string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sid = sid
	i.auid = auid
}

func (i *Identity) Clear() {
	i.SetSession("", "")
}

// Credentials returns the device id and SID for the event socket handshake.
func (i *Identity) Credentials() (deviceID, sid string) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.deviceID, i.sid
}

// Options configures a Requester.
type Options struct {
	BaseURL   string
	UserAgent string
	Language  string
	Logger    *zap.Logger
}

// Requester sends signed requests and classifies their responses.
type Requester struct {
	doer      aminokit.Doer
	identity  *Identity
	baseURL   string
	userAgent string
	language  string
	logger    *zap.Logger
	now       func() time.Time
}

func NewRequester(doer aminokit.Doer, identity *Identity, opts Options) *Requester {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Requester{
		doer:      doer,
		identity:  identity,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		language:  opts.Language,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// WithDoer returns a copy of r sending through doer. The copy shares r's
// identity, so logins through either are visible to both.
func (r *Requester) WithDoer(doer aminokit.Doer) *Requester {
	clone := *r
	clone.doer = doer
	return &clone
}

func (r *Requester) Identity() *Identity {
	return r.identity
}

// Request describes one REST call.
type Request struct {
	Method string
	// NdcID selects the route prefix, see NdcPath.
	NdcID int
	// Path is relative to the route prefix and starts with "/".
	Path  string
	Query url.Values
	// JSON is serialized with an injected "timestamp" field. It takes
	// precedence over Body.
	JSON map[string]any
	// Body is sent as is with ContentType (application/octet-stream if empty).
	Body        []byte
	ContentType string
}

// URL returns the absolute URL of req.
func (r *Requester) URL(req Request) string {
	u := r.baseURL + NdcPath(req.NdcID) + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// Do sends req and returns the response body of a successful call.
//
// A response that is not JSON yields a *aminokit.TransportError. A JSON
// response with a non-2xx status yields a *aminokit.APIError.
func (r *Requester) Do(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := r.encodeBody(req)
	if err != nil {
		return nil, err
	}

	endpoint := r.URL(req)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	r.setHeaders(httpReq.Header, body, contentType)

	r.logger.Debug("amino request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.ByteString("body", truncate(body)),
	)

	resp, err := r.doer.Do(httpReq)
	if err != nil {
		return nil, &aminokit.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &aminokit.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	r.logger.Debug("amino response",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", truncate(data)),
	)

	if err := classify(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DoJSON sends req and decodes a successful response into out.
func (r *Requester) DoJSON(ctx context.Context, req Request, out any) error {
	data, err := r.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Path, err)
	}
	return nil
}

func (r *Requester) encodeBody(req Request) ([]byte, string, error) {
	switch {
	case req.JSON != nil:
		payload := make(map[string]any, len(req.JSON)+1)
		for k, v := range req.JSON {
			payload[k] = v
		}
		payload["timestamp"] = r.now().UnixMilli()

		body, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s payload: %w", req.Path, err)
		}
		return body, aminokit.ContentTypeJSON, nil

	case req.Body != nil:
		contentType := req.ContentType
		if contentType == "" {
			contentType = aminokit.ContentTypeOctetStream
		}
		return req.Body, contentType, nil

	default:
		return nil, aminokit.ContentTypeURLEncoded, nil
	}
}

func (r *Requester) setHeaders(h http.Header, body []byte, contentType string) {
	deviceID := r.identity.DeviceID()
	sid, auid := r.identity.Session()

	h.Set("User-Agent", r.userAgent)
	h.Set("Accept-Language", r.language)
	h.Set("Content-Type", contentType)
	h[headerDeviceID] = []string{deviceID}
	if sid != "" {
		h[headerAuth] = []string{"sid=" + sid}
	}
	if auid != "" {
		h[headerAUID] = []string{auid}
	}
	if body != nil {
		h[headerSignature] = []string{signing.Sign(body)}
	}
}

type apiStatus struct {
	Code    int    `json:"api:statuscode"`
	Message string `json:"api:message"`
}

func classify(status int, body []byte) error {
	if !json.Valid(body) {
		err := aminokit.ErrHTMLResponse
		if status == http.StatusForbidden {
			err = aminokit.ErrIPTemporaryBan
		}
		return &aminokit.TransportError{StatusCode: status, Body: string(truncate(body)), Err: err}
	}

	if status >= 200 && status < 300 {
		return nil
	}

	var st apiStatus
	_ = json.Unmarshal(body, &st)
	return &aminokit.APIError{HTTPStatus: status, Code: st.Code, Message: st.Message}
}

const maxLoggedBody = 2048

func truncate(b []byte) []byte {
	if len(b) > maxLoggedBody {
		return b[:maxLoggedBody]
	}
	return b
}
