// /internal/trigger/context.go
package trigger

import (
	"strings"
	"time"

	"soundbot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// BotHandle is the slice of the running bot that reactions may touch. Every
// handler receives it through its context; there is no process-wide bot
// singleton to reach for.
type BotHandle interface {
	// UserID returns the bot's own user ID.
	UserID() string
	// FindUserVoiceState returns the voice channel a user currently sits in.
	FindUserVoiceState(guildID, userID string) (channelID string, ok bool)
	// AllowPlayback rate-limits audio playback per guild.
	AllowPlayback(guildID string) bool
	// SoundboardExpiry is how long the soundboard picker stays open.
	SoundboardExpiry() time.Duration
}

// Context carries everything a reaction needs for one matched event.
type Context struct {
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Storage *storage.Storage
	Bot     BotHandle

	// Args is the message content with prefix and command token stripped.
	Args string
}

// Fields splits Args on whitespace.
func (ctx *Context) Fields() []string {
	return strings.Fields(ctx.Args)
}

// Reply sends a plain message to the originating channel.
func (ctx *Context) Reply(text string) error {
	_, err := ctx.Session.ChannelMessageSend(ctx.Message.ChannelID, text)
	return err
}

// ReplyEmbed sends an embed to the originating channel.
func (ctx *Context) ReplyEmbed(e *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, e)
}

// InGuild reports whether the message came from a guild channel.
func (ctx *Context) InGuild() bool {
	return ctx.Message.GuildID != ""
}
