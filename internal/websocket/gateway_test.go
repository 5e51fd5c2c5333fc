package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testGateway is an in-process stand-in for the Amino gateway. It accepts
// every handshake, records it, and forwards frames the client sends.
type testGateway struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	conns      []*websocket.Conn
	handshakes []*http.Request

	connected chan *websocket.Conn
	received  chan []byte
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	g := &testGateway{
		t: t,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		connected: make(chan *websocket.Conn, 16),
		received:  make(chan []byte, 64),
	}
	g.srv = httptest.NewServer(http.HandlerFunc(g.handle))

	t.Cleanup(func() {
		g.mu.Lock()
		for _, c := range g.conns {
			_ = c.Close()
		}
		g.mu.Unlock()
		g.srv.Close()
	})
	return g
}

func (g *testGateway) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	g.mu.Lock()
	g.conns = append(g.conns, conn)
	g.handshakes = append(g.handshakes, r.Clone(r.Context()))
	g.mu.Unlock()

	g.connected <- conn

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			g.received <- data
		}
	}()
}

func (g *testGateway) URL() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

func (g *testGateway) waitConn() *websocket.Conn {
	g.t.Helper()

	select {
	case c := <-g.connected:
		return c
	case <-time.After(5 * time.Second):
		g.t.Fatal("gateway: no connection")
		return nil
	}
}

func (g *testGateway) waitFrame() []byte {
	g.t.Helper()

	select {
	case data := <-g.received:
		return data
	case <-time.After(5 * time.Second):
		g.t.Fatal("gateway: no frame received")
		return nil
	}
}

func (g *testGateway) handshakeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handshakes)
}

func (g *testGateway) handshake(i int) *http.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handshakes[i]
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("gateway write: %v", err)
	}
}
