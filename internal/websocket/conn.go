package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/protocol"
)

const (
	sendQueueSize = 256
	writeWait     = 10 * time.Second

	// DefaultPingInterval is how often the write pump pings the gateway.
	DefaultPingInterval = 54 * time.Second
)

// RateLimitConfig throttles outbound frames on a connection.
type RateLimitConfig struct {
	// MessagesPerSecond defines how many frames can be sent per second
	MessagesPerSecond rate.Limit
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int
	// Enabled determines if rate limiting is active
	Enabled bool
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

// Conn is a single gateway connection. Outbound frames are queued and written
// by a dedicated write pump; reads are left to the owner, which must be the
// only reader.
type Conn struct {
	id      string
	conn    *websocket.Conn
	ctx     context.Context
	cancel  context.CancelFunc
	sendCh  chan []byte
	mu      sync.RWMutex
	closed  bool
	limiter *rate.Limiter
}

func newConn(conn *websocket.Conn, rateLimitConfig *RateLimitConfig, pingInterval time.Duration) *Conn {
	ctx, cancel := context.WithCancel(context.Background())

	var limiter *rate.Limiter
	if rateLimitConfig != nil && rateLimitConfig.Enabled {
		limiter = rate.NewLimiter(rateLimitConfig.MessagesPerSecond, rateLimitConfig.Burst)
	}
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}

	c := &Conn{
		id:      uuid.New().String(),
		conn:    conn,
		ctx:     ctx,
		cancel:  cancel,
		sendCh:  make(chan []byte, sendQueueSize),
		limiter: limiter,
	}

	go c.writePump(pingInterval)

	return c
}

// ID returns a unique identifier for the connection
func (c *Conn) ID() string {
	return c.id
}

// Context is cancelled when the connection closes.
func (c *Conn) Context() context.Context {
	return c.ctx
}

// Send encodes and queues a frame.
func (c *Conn) Send(ctx context.Context, frameType int, payload any) error {
	data, err := protocol.Encode(frameType, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", aminokit.ErrFailedToEncode, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New(aminokit.ErrConnectionClosed)
	}

	// Holding the read lock keeps Close from closing sendCh under us.
	select {
	case c.sendCh <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return errors.New(aminokit.ErrContextCancelled)
	}
}

// ReadMessage blocks for the next data frame.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close closes the connection with a normal closure code.
func (c *Conn) Close() error {
	return c.CloseWithCode(websocket.CloseNormalClosure, "")
}

// CloseWithCode closes the connection with a close code and optional reason
func (c *Conn) CloseWithCode(code int, reason string) error {
	// Cancel first so a Send blocked on a full queue lets go of the read lock.
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	message := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))

	close(c.sendCh)
	return c.conn.Close()
}

// IsAlive returns true until the connection is closed
func (c *Conn) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// writePump pumps frames from the send queue to the websocket connection
func (c *Conn) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.cancel()
	}()

	for {
		select {
		case message, ok := <-c.sendCh:
			if !ok {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
