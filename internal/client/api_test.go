package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/config"
	"github.com/luciancaetano/aminokit/internal/sid"
)

const (
	testDeviceID = "42000102030405060708090A0B0C0D0E0F10111213065704341F5E54A4A8EF4FFE1FC8940A7C003BA0"
	testUID      = "5a1f0c3e-7b2d-4e8a-9c61-0d2f4b6a8e10"
	testNow      = int64(1700000000)
)

// recordedRequest is a request as seen by fakeAPI.
type recordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	RawBody []byte
	Body    map[string]any
}

// fakeAPI answers REST calls with canned JSON per "METHOD /path" and records
// every request. Unknown routes answer {"api:statuscode":0}.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	routes   map[string]cannedResponse
	requests []recordedRequest
}

type cannedResponse struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{t: t, routes: map[string]cannedResponse{}}
	api.srv = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	rec := recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Header:  r.Header.Clone(),
		RawBody: raw,
	}
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	a.mu.Lock()
	a.requests = append(a.requests, rec)
	resp, ok := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusOK, body: `{"api:statuscode":0}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (a *fakeAPI) route(method, path, body string) {
	a.routeStatus(method, path, http.StatusOK, body)
}

func (a *fakeAPI) routeStatus(method, path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" /api/v1"+path] = cannedResponse{status: status, body: body}
}

func (a *fakeAPI) URL() string {
	return a.srv.URL + "/api/v1"
}

func (a *fakeAPI) all() []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedRequest(nil), a.requests...)
}

func (a *fakeAPI) last() recordedRequest {
	a.t.Helper()
	reqs := a.all()
	require.NotEmpty(a.t, reqs, "no request recorded")
	return reqs[len(reqs)-1]
}

func (a *fakeAPI) count(method, path string) int {
	n := 0
	for _, r := range a.all() {
		if r.Method == method && r.Path == "/api/v1"+path {
			n++
		}
	}
	return n
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.APIURL = apiURL
	cfg.DeviceID = testDeviceID
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.json")
	cfg.HandshakeBackoff = 10 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	return newTestClientWithConfig(t, testConfig(t, api.URL()))
}

func newTestClientWithConfig(t *testing.T, cfg *config.Config) *Client {
	t.Helper()

	c, err := New(Options{
		Config:     cfg,
		HTTPClient: http.DefaultClient,
		Dialer:     gorilla.DefaultDialer,
		SyncEvents: true,
	})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Unix(testNow, 0) }
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// loggedIn marks c as logged in as testUID without a login round trip.
func loggedIn(t *testing.T, c *Client) {
	t.Helper()
	require.NoError(t, c.setAuth(newAuthFixture(t, testNow)))
}

func testSID(t *testing.T, issuedAt int64) string {
	t.Helper()
	token, err := sid.Encode(bytes.Repeat([]byte{0xAB}, 20), testUID, "203.0.113.7", issuedAt, 100)
	require.NoError(t, err)
	return token
}

func testSecret(issuedAt int64) string {
	return "32 " + testUID + " 203.0.113.7 cafebabe 0 1 " + strconv.FormatInt(issuedAt, 10) + " extra"
}

func newAuthFixture(t *testing.T, issuedAt int64) *aminokit.Auth {
	t.Helper()
	return &aminokit.Auth{AUID: testUID, SID: testSID(t, issuedAt)}
}

func loginResponse(t *testing.T, issuedAt int64) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"auid":   testUID,
		"sid":    testSID(t, issuedAt),
		"secret": testSecret(issuedAt),
		"account": map[string]any{
			"uid":      testUID,
			"nickname": "tester",
		},
		"userProfile": map[string]any{
			"uid":      testUID,
			"nickname": "tester",
		},
	})
	require.NoError(t, err)
	return string(b)
}
