package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
)

// Handler handles a gateway event.
type Handler func(ctx context.Context, ev *Event)

// Task is a callback run by Run once the session is logged in.
type Task func(ctx context.Context, c *Client) error

// ExecuteOptions controls how a Task runs.
type ExecuteOptions struct {
	// Loop reruns the task until Run returns.
	Loop bool
	// StartDelay and EndDelay are slept before and after every run.
	StartDelay time.Duration
	EndDelay   time.Duration
}

type task struct {
	fn   Task
	opts ExecuteOptions
}

// bot holds the command prefix and registered tasks of a client.
type bot struct {
	mu     sync.Mutex
	prefix string
	tasks  []task
}

// Event is a gateway event bound to the client that received it.
type Event struct {
	*aminokit.Event
	client *Client
}

// Client returns the client the event was received by.
func (e *Event) Client() *Client {
	return e.client
}

// Args returns the words of a text message after the first one.
func (e *Event) Args() []string {
	fields := strings.Fields(e.Content())
	if len(fields) < 2 {
		return nil
	}
	return fields[1:]
}

// Send posts a message to the chat the event came from.
func (e *Event) Send(ctx context.Context, content string, opts *MessageOptions) (*aminokit.Message, error) {
	if e.ThreadID() == "" {
		return nil, errors.New("event has no chat")
	}
	return e.client.sendMessage(ctx, e.NdcID, e.ThreadID(), content, opts)
}

// Reply answers the message of the event.
func (e *Event) Reply(ctx context.Context, content string) (*aminokit.Message, error) {
	if e.Message == nil {
		return nil, errors.New("event has no message")
	}
	return e.Send(ctx, content, &MessageOptions{ReplyTo: e.Message.MessageID})
}

func (e *Event) SendSticker(ctx context.Context, stickerID string) (*aminokit.Message, error) {
	if e.ThreadID() == "" {
		return nil, errors.New("event has no chat")
	}
	return e.client.sendSticker(ctx, e.NdcID, e.ThreadID(), stickerID)
}

// On registers handler for the events emitted under key, see the Event*
// constants of package aminokit.
func (c *Client) On(key string, handler Handler) {
	c.socket.On(key, func(ctx context.Context, ev *aminokit.Event) {
		handler(ctx, &Event{Event: ev, client: c})
	})
}

// Command registers handler for text messages starting with the client's
// command prefix followed by name or one of aliases.
func (c *Client) Command(handler Handler, name string, aliases ...string) {
	c.bot.mu.Lock()
	prefix := c.bot.prefix
	c.bot.mu.Unlock()

	c.CommandWithPrefix(prefix, handler, name, aliases...)
}

// CommandWithPrefix is Command with an explicit prefix.
func (c *Client) CommandWithPrefix(prefix string, handler Handler, name string, aliases ...string) {
	for _, n := range append([]string{name}, aliases...) {
		command := strings.ToLower(prefix + n)
		if command == "" {
			continue
		}
		c.socket.AddCommand(command)
		c.On(command, handler)
	}
}

// SetCommandPrefix changes the prefix of commands registered afterwards.
func (c *Client) SetCommandPrefix(prefix string) {
	c.bot.mu.Lock()
	defer c.bot.mu.Unlock()
	c.bot.prefix = prefix
}

// Execute registers a task for Run.
func (c *Client) Execute(fn Task, opts ExecuteOptions) {
	c.bot.mu.Lock()
	defer c.bot.mu.Unlock()
	c.bot.tasks = append(c.bot.tasks, task{fn: fn, opts: opts})
}

// LoginOptions selects how Run logs in. SID takes precedence; with an email
// the credential cache is used. With neither, the current session is kept.
type LoginOptions struct {
	Email    string
	Password string
	SID      string
}

// Run logs in, connects the event socket, starts the registered tasks and
// blocks until ctx is done. Every task runs on its own goroutine alongside the
// event stream; looping tasks rerun until Run returns.
func (c *Client) Run(ctx context.Context, login LoginOptions) error {
	if err := c.runLogin(ctx, login); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	if err := c.socket.Run(ctx); err != nil {
		return err
	}
	c.logger.Info("bot running", zap.String("auid", c.UserID()), zap.Int("ndc", c.NdcID()))

	c.bot.mu.Lock()
	tasks := append([]task(nil), c.bot.tasks...)
	c.bot.mu.Unlock()

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			for c.runTask(ctx, t) && t.opts.Loop {
			}
		}(t)
	}

	<-ctx.Done()
	return c.Close()
}

func (c *Client) runLogin(ctx context.Context, login LoginOptions) error {
	var err error
	switch {
	case login.SID != "":
		_, err = c.LoginSID(ctx, login.SID)
	case login.Email != "":
		_, err = c.LoginCached(ctx, login.Email, login.Password)
	case c.UserID() == "":
		err = aminokit.ErrNotLoggedIn
	}
	return err
}

// runTask runs t once with its delays and reports whether ctx is still live.
// Task errors and panics are logged.
func (c *Client) runTask(ctx context.Context, t task) bool {
	if !sleep(ctx, t.opts.StartDelay) {
		return false
	}
	if err := c.callTask(ctx, t); err != nil {
		c.logger.Error("task failed", zap.Error(err))
	}
	return sleep(ctx, t.opts.EndDelay)
}

func (c *Client) callTask(ctx context.Context, t task) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	return t.fn(ctx, c)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
