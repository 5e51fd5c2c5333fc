// Package aminokit is a client SDK for the Amino social network: the signed REST API and the
// gateway WebSocket that streams chat messages, notifications and chat actions.
//
// This package holds the shared vocabulary: the EventSocket interface, event keys and frame
// types, typed errors and the models returned by the REST wrappers. Clients are built with the
// amino package.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/aminokit"
//	    "github.com/luciancaetano/aminokit/amino"
//	)
//
//	cfg, _ := amino.LoadConfig()
//	c, err := amino.New(amino.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Commands match the start of text messages, case-insensitively.
//	c.Command(func(ctx context.Context, ev *amino.Event) {
//	    ev.Reply(ctx, "pong")
//	}, "ping")
//
//	// Any event key can be subscribed to.
//	c.On(aminokit.EventMemberJoin, func(ctx context.Context, ev *amino.Event) {
//	    ev.Send(ctx, "welcome!", nil)
//	})
//
//	// Run logs in (reusing cached credentials), connects and blocks until ctx is done.
//	err = c.Run(ctx, amino.LoginOptions{Email: email, Password: password})
//
// # Requests
//
// Every REST call carries the device id (NDCDEVICEID), the session (NDCAUTH) and, when it has a
// body, an HMAC signature of the exact bytes sent (NDC-MSG-SIG). JSON bodies get a "timestamp"
// field in milliseconds. Calls are routed by community:
//
//	ndc > 0   /x{ndc}/s/...
//	ndc == 0  /g/s/...
//	ndc < 0   /g/s-x{-ndc}/...   (global data about a community)
//
// Responses that are not JSON fail with *TransportError (ErrIPTemporaryBan for a 403,
// ErrHTMLResponse otherwise). JSON responses with an error status fail with *APIError, which
// unwraps to a sentinel such as ErrInvalidSession so callers can use errors.Is.
//
// # Gateway
//
// The gateway handshake is signed like a request and retried three times, three seconds apart,
// before Run fails with ErrHandshakeFailed. The connection is replaced every two minutes. Frames
// are dispatched under these keys, in order:
//
//   - chat messages (t=1000): "message", then "{type}:{mediaType}", then for text messages every
//     registered command the content starts with
//   - notifications (t=10): "notification"
//   - chat actions (t=304, t=306): "action", plus "user_typing_start" or "user_typing_end"
//   - every frame: "any"
//
// Malformed frames are logged and skipped. A panicking handler is recovered and logged.
//
// # Sessions
//
// A SID is valid for 12 hours after it was issued and a login secret for 14 days; both thresholds
// are configurable. LoginCached keeps credentials per email in a local cache file (.ed.cache by
// default) and only logs in with the password once both have expired.
package aminokit
