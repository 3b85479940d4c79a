// /internal/discord/bot.go
package discord

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"soundbot/internal/config"
	"soundbot/internal/storage"
	"soundbot/internal/trigger"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Bot is a Discord bot
type Bot struct {
	dg         *discordgo.Session
	storage    *storage.Storage
	cfg        *config.Config
	dispatcher *trigger.Dispatcher

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// StartBot starts the Discord bot
func StartBot(ctx context.Context, cfg *config.Config, storage *storage.Storage) error {
	b := &Bot{
		cfg:        cfg,
		storage:    storage,
		dispatcher: trigger.NewDispatcher(cfg.CommandPrefix),
		limiters:   make(map[string]*rate.Limiter),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run starts the Discord bot
func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onMessageCreate is called when a message is created. Dispatch runs on its
// own goroutine: interactive reactions block until the prompt resolves, and
// the session's event loop must keep delivering the reaction events they
// wait for.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	ctx := &trigger.Context{
		Session: s,
		Message: m,
		Storage: b.storage,
		Bot:     b,
	}
	go b.dispatcher.Dispatch(ctx)
}

// UserID returns the bot's own user ID.
func (b *Bot) UserID() string {
	if b.dg.State.User == nil {
		return ""
	}
	return b.dg.State.User.ID
}

// SoundboardExpiry is how long the soundboard picker stays open.
func (b *Bot) SoundboardExpiry() time.Duration {
	return time.Duration(b.cfg.SoundboardExpiry) * time.Second
}

// AllowPlayback rate-limits playback per guild so a reaction flood doesn't
// stack voice joins.
func (b *Bot) AllowPlayback(guildID string) bool {
	b.mu.Lock()
	limiter, ok := b.limiters[guildID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(2*time.Second), 2)
		b.limiters[guildID] = limiter
	}
	b.mu.Unlock()

	return limiter.Allow()
}
