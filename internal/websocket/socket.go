// Package websocket implements the Amino gateway client: a signed handshake
// with bounded retries, a receive loop that decodes and dispatches frames, and
// a reconnect loop that replaces the connection on a fixed interval.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/internal/protocol"
	"github.com/luciancaetano/aminokit/internal/signing"
)

const (
	DefaultURL                = "wss://ws1.aminoapps.com"
	DefaultHandshakeAttempts  = 3
	DefaultHandshakeBackoff   = 3 * time.Second
	DefaultReconnectInterval  = 120 * time.Second
	DefaultClosedPollInterval = 3 * time.Second
)

// Options configures a Socket. Zero values select the defaults above.
type Options struct {
	URL                string
	Dialer             aminokit.Dialer
	Credentials        aminokit.Credentials
	HandshakeAttempts  int
	HandshakeBackoff   time.Duration
	ReconnectInterval  time.Duration
	ClosedPollInterval time.Duration
	PingInterval       time.Duration
	RateLimit          *RateLimitConfig
	// Emitter receives dispatched events. A new async emitter is created when nil.
	Emitter *Emitter
	Logger  *zap.Logger
}

// Socket implements aminokit.EventSocket.
type Socket struct {
	opts    Options
	emitter *Emitter
	logger  *zap.Logger
	now     func() time.Time

	// mu guards conn; the reconnect loop swaps it under the write lock.
	mu   sync.RWMutex
	conn *Conn

	state atomic.Int32

	cmdMu    sync.RWMutex
	commands []string

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ aminokit.EventSocket = (*Socket)(nil)

func NewSocket(opts Options) *Socket {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.HandshakeAttempts <= 0 {
		opts.HandshakeAttempts = DefaultHandshakeAttempts
	}
	if opts.HandshakeBackoff <= 0 {
		opts.HandshakeBackoff = DefaultHandshakeBackoff
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
	}
	if opts.ClosedPollInterval <= 0 {
		opts.ClosedPollInterval = DefaultClosedPollInterval
	}
	if opts.RateLimit == nil {
		opts.RateLimit = NoRateLimit()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Emitter == nil {
		opts.Emitter = NewEmitter(opts.Logger, true)
	}

	return &Socket{
		opts:    opts,
		emitter: opts.Emitter,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

// Run connects and starts the receive and reconnect loops.
func (s *Socket) Run(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running {
		return errors.New(aminokit.ErrSocketAlreadyRunning)
	}

	s.setState(aminokit.StateConnecting)
	conn, err := s.connect(ctx)
	if err != nil {
		s.setState(aminokit.StateDisconnected)
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.setState(aminokit.StateConnected)

	s.wg.Add(2)
	go s.receiveLoop(loopCtx)
	go s.reconnectLoop(loopCtx)

	s.logger.Info("gateway connected", zap.String("conn", conn.ID()))
	return nil
}

// Close stops both loops and closes the current connection.
func (s *Socket) Close() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.cancel()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	s.wg.Wait()
	s.setState(aminokit.StateDisconnected)
	return err
}

func (s *Socket) State() aminokit.SocketState {
	return aminokit.SocketState(s.state.Load())
}

func (s *Socket) setState(state aminokit.SocketState) {
	s.state.Store(int32(state))
}

func (s *Socket) On(key string, handler aminokit.EventHandler) {
	s.emitter.On(key, handler)
}

// AddCommand registers a command matched case-insensitively against the start
// of text messages.
func (s *Socket) AddCommand(command string) {
	command = strings.ToLower(command)
	if command == "" {
		return
	}

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	for _, c := range s.commands {
		if c == command {
			return
		}
	}
	s.commands = append(s.commands, command)
}

// Send queues a frame on the current connection.
func (s *Socket) Send(ctx context.Context, frameType int, payload any) error {
	conn := s.current()
	if conn == nil || !conn.IsAlive() {
		return errors.New(aminokit.ErrConnectionClosed)
	}
	return conn.Send(ctx, frameType, payload)
}

func (s *Socket) current() *Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// connect performs the signed handshake, retrying up to HandshakeAttempts times.
func (s *Socket) connect(ctx context.Context) (*Conn, error) {
	var lastErr error

	for attempt := 1; attempt <= s.opts.HandshakeAttempts; attempt++ {
		endpoint, header := s.handshake()

		ws, resp, err := s.opts.Dialer.DialContext(ctx, endpoint, header)
		if err == nil {
			return newConn(ws, s.opts.RateLimit, s.opts.PingInterval), nil
		}

		lastErr = err
		fields := []zap.Field{zap.Int("attempt", attempt), zap.Error(err)}
		if resp != nil {
			fields = append(fields, zap.Int("status", resp.StatusCode))
		}
		s.logger.Warn("gateway handshake failed", fields...)

		if attempt == s.opts.HandshakeAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", aminokit.ErrHandshakeFailed, ctx.Err())
		case <-time.After(s.opts.HandshakeBackoff):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", aminokit.ErrHandshakeFailed, s.opts.HandshakeAttempts, lastErr)
}

// handshake builds the URL and headers for one connection attempt. The signed
// body embeds the current time, so it is rebuilt for every attempt.
func (s *Socket) handshake() (string, http.Header) {
	var deviceID, sid string
	if s.opts.Credentials != nil {
		deviceID, sid = s.opts.Credentials()
	}

	signBody := deviceID + "|" + strconv.FormatInt(s.now().UnixMilli(), 10)
	endpoint := strings.TrimRight(s.opts.URL, "/") + "/?signbody=" + url.QueryEscape(signBody)

	header := http.Header{}
	header["NDCDEVICEID"] = []string{deviceID}
	if sid != "" {
		header["NDCAUTH"] = []string{"sid=" + sid}
	}
	header["NDC-MSG-SIG"] = []string{signing.SignString(signBody)}

	return endpoint, header
}

func (s *Socket) receiveLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		conn := s.current()
		if conn == nil || !conn.IsAlive() {
			if !sleepCtx(ctx, s.opts.ClosedPollInterval) {
				return
			}
			continue
		}

		data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if conn.IsAlive() {
				s.logger.Warn("gateway connection lost", zap.String("conn", conn.ID()), zap.Error(err))
				_ = conn.Close()
				if s.current() == conn {
					s.setState(aminokit.StateDisconnected)
				}
			}
			continue
		}

		s.dispatch(ctx, data)
	}
}

func (s *Socket) reconnectLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.ReconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconnect(ctx)
		}
	}
}

// reconnect replaces the current connection. A failed redial leaves the
// socket disconnected until the next tick.
func (s *Socket) reconnect(ctx context.Context) {
	s.setState(aminokit.StateReconnecting)

	s.mu.Lock()
	old := s.conn
	s.conn = nil
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	conn, err := s.connect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("gateway reconnect failed", zap.Error(err))
			s.setState(aminokit.StateDisconnected)
		}
		return
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.setState(aminokit.StateConnected)
	s.logger.Debug("gateway reconnected", zap.String("conn", conn.ID()))
}

type chatFrame struct {
	ChatMessage      *aminokit.Message `json:"chatMessage"`
	NdcID            int               `json:"ndcId"`
	AlertOption      int               `json:"alertOption"`
	MembershipStatus int               `json:"membershipStatus"`
}

// dispatch decodes one frame and emits it under every key it matches.
// Malformed frames are logged and dropped.
func (s *Socket) dispatch(ctx context.Context, data []byte) {
	frame, err := protocol.Decode(data)
	if err != nil {
		s.logger.Warn("skipping malformed frame", zap.Error(err), zap.Int("size", len(data)))
		return
	}

	base := aminokit.Event{
		FrameType: frame.Type,
		NdcID:     frame.NdcID(),
		Payload:   frame.Payload,
		Raw:       frame.Raw,
	}

	switch frame.Type {
	case aminokit.FrameChatMessage:
		var o chatFrame
		if err := frame.Unmarshal(&o); err != nil || o.ChatMessage == nil {
			s.logger.Warn("skipping malformed chat message", zap.Error(err))
			break
		}
		base.Message = o.ChatMessage
		base.AlertOption = o.AlertOption
		base.MembershipStatus = o.MembershipStatus

		s.emit(ctx, base, aminokit.EventMessage)

		key := fmt.Sprintf("%d:%d", o.ChatMessage.Type, o.ChatMessage.MediaType)
		s.emit(ctx, base, key)

		if key == aminokit.EventTextMessage {
			for _, command := range s.matchCommands(o.ChatMessage.Content) {
				s.emit(ctx, base, command)
			}
		}

	case aminokit.FrameNotification:
		s.emit(ctx, base, aminokit.EventNotification)

	case aminokit.FrameActionStart, aminokit.FrameActionEnd:
		s.emit(ctx, base, aminokit.EventAction)

		if frame.FirstAction() == aminokit.ActionTyping {
			if frame.Type == aminokit.FrameActionStart {
				s.emit(ctx, base, aminokit.EventUserTypingStart)
			} else {
				s.emit(ctx, base, aminokit.EventUserTypingEnd)
			}
		}
	}

	s.emit(ctx, base, aminokit.EventAny)
}

func (s *Socket) emit(ctx context.Context, base aminokit.Event, key string) {
	ev := base
	ev.Key = key
	s.emitter.Emit(ctx, &ev)
}

func (s *Socket) matchCommands(content string) []string {
	content = strings.ToLower(content)

	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()

	var matched []string
	for _, command := range s.commands {
		if strings.HasPrefix(content, command) {
			matched = append(matched, command)
		}
	}
	return matched
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
