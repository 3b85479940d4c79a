// /internal/audio/play.go
package audio

import (
	"fmt"
	"log"
	"strings"

	"soundbot/internal/storage"
	"soundbot/internal/trigger"

	"github.com/bwmarrin/discordgo"
)

var playReaction = &trigger.Reaction[*storage.AudioInfo]{
	ReactionName: "play",
	Short:        "Plays a stored audio command in your current voice channel",
	Pre: func(ctx *trigger.Context) (*storage.AudioInfo, error) {
		name := strings.TrimSpace(ctx.Args)
		if name == "" {
			return nil, trigger.Userf("You didn't provide the command to play!")
		}

		audio, err := ctx.Storage.GetAudioCommand(ctx.Message.GuildID, name)
		if err != nil {
			return nil, trigger.Userf("There is no audio command named '%s'.", name)
		}
		return audio, nil
	},
	Exec: func(ctx *trigger.Context, audio *storage.AudioInfo) error {
		channelID, ok := ctx.Bot.FindUserVoiceState(ctx.Message.GuildID, ctx.Message.Author.ID)
		if !ok {
			return trigger.Userf("You're not in a voicechannel!")
		}
		return Play(ctx, ctx.Message.GuildID, channelID, audio)
	},
}

// Play streams one audio command into a voice channel. The bot's guild
// display name is set to the command name for the duration of playback and
// restored afterwards no matter how the stream ends, and the voice
// connection is always torn down.
func Play(ctx *trigger.Context, guildID, channelID string, audio *storage.AudioInfo) error {
	if !ctx.Bot.AllowPlayback(guildID) {
		return trigger.Userf("Easy there, wait a moment between clips.")
	}

	stream, cleanup, err := openStream(audio)
	if err != nil {
		return fmt.Errorf("failed to open stream for %q: %w", audio.Command, err)
	}
	defer func() {
		stream.Close()
		if cleanup != nil {
			cleanup()
		}
	}()

	restore := tempNickname(ctx.Session, guildID, ctx.Bot.UserID(), audio.Command)
	defer restore()

	vc, err := ctx.Session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
	}
	defer vc.Disconnect()

	vc.Speaking(true)
	defer vc.Speaking(false)

	return streamToVoice(stream, nil, vc)
}

// tempNickname renames the bot in the guild and returns the restore func.
// A failed rename is logged and playback continues under the old name.
func tempNickname(s *discordgo.Session, guildID, botID, name string) func() {
	member, err := s.GuildMember(guildID, botID)
	if err != nil {
		log.Printf("[WARN] [audio] failed to fetch own member in guild %s: %v", guildID, err)
		return func() {}
	}
	previous := member.Nick

	if err := s.GuildMemberNickname(guildID, "@me", name); err != nil {
		log.Printf("[WARN] [audio] failed to set nickname in guild %s: %v", guildID, err)
		return func() {}
	}

	return func() {
		if err := s.GuildMemberNickname(guildID, "@me", previous); err != nil {
			log.Printf("[WARN] [audio] failed to restore nickname in guild %s: %v", guildID, err)
		}
	}
}
