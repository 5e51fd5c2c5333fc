package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
)

type handlerEntry struct {
	id string
	fn aminokit.EventHandler
}

// Emitter fans events out to handlers registered per key.
//
// Handlers for a key run in registration order. In async mode every Emit runs
// its handlers on a new goroutine, so a slow handler never stalls the caller.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	async    bool
	logger   *zap.Logger
}

func NewEmitter(logger *zap.Logger, async bool) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		handlers: make(map[string][]handlerEntry),
		async:    async,
		logger:   logger,
	}
}

// On registers fn for key and returns an id usable with Off.
func (e *Emitter) On(key string, fn aminokit.EventHandler) string {
	id := uuid.New().String()

	e.mu.Lock()
	e.handlers[key] = append(e.handlers[key], handlerEntry{id: id, fn: fn})
	e.mu.Unlock()

	return id
}

// Off removes the handler with the given id.
func (e *Emitter) Off(key, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.handlers[key]
	for i, h := range entries {
		if h.id != id {
			continue
		}
		next := make([]handlerEntry, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		next = append(next, entries[i+1:]...)
		if len(next) == 0 {
			delete(e.handlers, key)
		} else {
			e.handlers[key] = next
		}
		return true
	}
	return false
}

// Has reports whether any handler is registered for key.
func (e *Emitter) Has(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[key]) > 0
}

// Emit calls the handlers registered for ev.Key.
func (e *Emitter) Emit(ctx context.Context, ev *aminokit.Event) {
	e.mu.RLock()
	entries := e.handlers[ev.Key]
	e.mu.RUnlock()

	if len(entries) == 0 {
		return
	}

	// On only appends and Off copies, so entries is safe to use unlocked.
	if e.async {
		go e.run(ctx, entries, ev)
		return
	}
	e.run(ctx, entries, ev)
}

func (e *Emitter) run(ctx context.Context, entries []handlerEntry, ev *aminokit.Event) {
	for _, h := range entries {
		e.call(ctx, h, ev)
	}
}

func (e *Emitter) call(ctx context.Context, h handlerEntry, ev *aminokit.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked",
				zap.String("event", ev.Key),
				zap.String("handler", h.id),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	h.fn(ctx, ev)
}
