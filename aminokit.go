package aminokit

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// SocketState is the lifecycle state of the event socket.
type SocketState int32

const (
	StateDisconnected SocketState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s SocketState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// EventHandler receives a decoded gateway event.
//
// Handlers registered for the same key run in registration order. A panic inside
// a handler is recovered and logged; it never reaches the receive loop.
type EventHandler func(ctx context.Context, ev *Event)

// EventSocket defines the interface of the Amino gateway (WebSocket) client.
//
// The socket owns exactly one connection. Run performs the signed handshake and
// starts two background tasks: the receive loop, which decodes every frame and
// dispatches it to the registered handlers, and the reconnect loop, which
// replaces the connection on a fixed interval.
//
// Example usage:
//
//	socket.On(aminokit.EventTextMessage, func(ctx context.Context, ev *aminokit.Event) {
//	    log.Printf("%s: %s", ev.Message.Author.Nickname, ev.Message.Content)
//	})
//
//	if err := socket.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer socket.Close()
type EventSocket interface {
	// Run connects to the gateway and starts the receive and reconnect loops.
	//
	// The handshake is attempted a bounded number of times; when every attempt
	// fails Run returns an error wrapping ErrHandshakeFailed. Run returns once the
	// first connection is established. Cancelling ctx stops both loops.
	Run(ctx context.Context) error

	// Close stops the background loops and closes the connection.
	//
	// In-flight sends are not drained.
	Close() error

	// State returns the current connection state.
	State() SocketState

	// On registers a handler for an event key.
	//
	// Keys are the Event* constants, a "{type}:{mediaType}" message key, or a bot
	// command registered with AddCommand.
	On(key string, handler EventHandler)

	// AddCommand registers a bot command prefix.
	//
	// Text messages whose content starts with the command (case-insensitive) are
	// emitted under the command as their key.
	AddCommand(command string)

	// Send queues an outbound frame of the given type.
	//
	// Returns an error if the socket is not connected or ctx is cancelled.
	Send(ctx context.Context, frameType int, payload any) error
}

// Doer is the HTTP transport capability used by the REST layer.
//
// *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dialer is the WebSocket transport capability used by the event socket.
//
// *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Credentials returns the identity used to sign the next handshake.
//
// It is called once per connection attempt, so a re-login between reconnects is
// picked up without restarting the socket.
type Credentials func() (deviceID, sid string)

// Event is a decoded gateway frame.
type Event struct {
	// FrameType is the top-level "t" field of the frame.
	FrameType int
	// Key is the dispatch key the event was emitted under.
	Key string
	// NdcID is the community the event originated from (0 for global).
	NdcID int
	// Message is set for chat-message frames.
	Message *Message
	// AlertOption and MembershipStatus are copied from chat-message frames.
	AlertOption      int
	MembershipStatus int
	// Payload is the raw "o" object of the frame.
	Payload json.RawMessage
	// Raw is the whole frame.
	Raw json.RawMessage
}

// ThreadID returns the chat the event belongs to, if any.
func (e *Event) ThreadID() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.ThreadID
}

// Content returns the text of a chat message event.
func (e *Event) Content() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.Content
}
