// Command aminobot is a small chat bot built on aminokit. It answers a few
// commands in the chats of the configured community and checks in daily.
//
// Configuration comes from .env and AMINO_* variables; credentials from
// AMINO_EMAIL and AMINO_PASSWORD, or AMINO_SID.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luciancaetano/aminokit"
	"github.com/luciancaetano/aminokit/amino"
)

type ChatBot struct {
	client    *amino.Client
	logger    *zap.Logger
	community string
	started   time.Time

	// set by the daily task only
	ready bool

	seenMux sync.RWMutex
	seen    map[string]time.Time
}

// NewChatBot builds a bot for c. community is an Amino id or community link
// selected once the client has logged in; empty keeps the configured ndc.
func NewChatBot(c *amino.Client, logger *zap.Logger, community string) *ChatBot {
	return &ChatBot{
		client:    c,
		logger:    logger,
		community: community,
		started:   time.Now(),
		seen:      make(map[string]time.Time),
	}
}

func (b *ChatBot) Register() {
	b.client.On(aminokit.EventTextMessage, b.track)
	b.client.On(aminokit.EventUserTypingStart, func(_ context.Context, ev *amino.Event) {
		b.logger.Debug("typing", zap.Int("ndc", ev.NdcID), zap.ByteString("payload", ev.Payload))
	})

	b.client.Command(b.handlePing, "ping")
	b.client.Command(b.handleEcho, "echo")
	b.client.Command(b.handleSeen, "seen")
	b.client.Command(b.handleUptime, "uptime")

	b.client.Execute(b.daily, amino.ExecuteOptions{Loop: true, EndDelay: 24 * time.Hour})
}

// daily selects the community on its first successful run, then checks in.
func (b *ChatBot) daily(ctx context.Context, c *amino.Client) error {
	if !b.ready {
		if err := b.selectCommunity(ctx, c); err != nil {
			return err
		}
		b.ready = true
	}
	return b.checkIn(ctx, c)
}

func (b *ChatBot) selectCommunity(ctx context.Context, c *amino.Client) error {
	if b.community != "" && c.NdcID() == 0 {
		if err := c.SetCommunityByAminoID(ctx, b.community); err != nil {
			return fmt.Errorf("resolve community %s: %w", b.community, err)
		}
	}
	return b.announce(ctx, c)
}

func (b *ChatBot) track(_ context.Context, ev *amino.Event) {
	if ev.Message == nil || ev.Message.UID == "" {
		return
	}
	b.seenMux.Lock()
	b.seen[ev.Message.UID] = time.Now()
	b.seenMux.Unlock()
}

func (b *ChatBot) handlePing(ctx context.Context, ev *amino.Event) {
	if _, err := ev.Reply(ctx, "pong"); err != nil {
		b.logger.Warn("reply failed", zap.Error(err))
	}
}

func (b *ChatBot) handleEcho(ctx context.Context, ev *amino.Event) {
	text := strings.Join(ev.Args(), " ")
	if text == "" {
		return
	}
	if _, err := ev.Send(ctx, text, nil); err != nil {
		b.logger.Warn("echo failed", zap.Error(err))
	}
}

func (b *ChatBot) handleSeen(ctx context.Context, ev *amino.Event) {
	b.seenMux.RLock()
	n := len(b.seen)
	b.seenMux.RUnlock()

	msg := fmt.Sprintf("%d members talked since I started", n)
	if _, err := ev.Reply(ctx, msg); err != nil {
		b.logger.Warn("reply failed", zap.Error(err))
	}
}

func (b *ChatBot) handleUptime(ctx context.Context, ev *amino.Event) {
	msg := "up for " + time.Since(b.started).Truncate(time.Second).String()
	if _, err := ev.Reply(ctx, msg); err != nil {
		b.logger.Warn("reply failed", zap.Error(err))
	}
}

func (b *ChatBot) announce(ctx context.Context, c *amino.Client) error {
	if c.NdcID() == 0 {
		return nil
	}
	info, err := c.GetCommunityInfo(ctx)
	if err != nil {
		return fmt.Errorf("community info: %w", err)
	}
	b.logger.Info("serving community", zap.String("name", info.Name), zap.Int("ndc", info.NdcID))
	return nil
}

func (b *ChatBot) checkIn(ctx context.Context, c *amino.Client) error {
	if c.NdcID() == 0 {
		return nil
	}
	res, err := c.CheckIn(ctx, 0)
	if err != nil {
		return fmt.Errorf("check in: %w", err)
	}
	b.logger.Info("checked in", zap.Int("streak", res.ConsecutiveCheckInDays))
	return nil
}

func main() {
	cfg, err := amino.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := amino.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := amino.New(amino.Options{Config: cfg, Logger: logger})
	if err != nil {
		logger.Fatal("failed to create client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	NewChatBot(c, logger, os.Getenv("AMINO_COMMUNITY")).Register()

	login := amino.LoginOptions{
		Email:    os.Getenv("AMINO_EMAIL"),
		Password: os.Getenv("AMINO_PASSWORD"),
		SID:      os.Getenv("AMINO_SID"),
	}

	logger.Info("starting bot, press Ctrl+C to stop", zap.String("prefix", cfg.CommandPrefix))
	if err := c.Run(ctx, login); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}
