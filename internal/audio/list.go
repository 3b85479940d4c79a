// /internal/audio/list.go
package audio

import (
	"fmt"

	"soundbot/internal/listembed"
	"soundbot/internal/storage"
	"soundbot/internal/trigger"
)

const embedColor = 0x9B59B6

var listReaction = &trigger.Reaction[[]storage.AudioInfo]{
	ReactionName: "list",
	Short:        "Shows all stored audio commands",
	Pre: func(ctx *trigger.Context) ([]storage.AudioInfo, error) {
		list, err := ctx.Storage.ListAudioCommands(ctx.Message.GuildID)
		if err != nil {
			return nil, fmt.Errorf("failed to list audio commands: %w", err)
		}
		if len(list) == 0 {
			return nil, trigger.Userf("There are no audio commands on this server (yet).")
		}
		return list, nil
	},
	Exec: func(ctx *trigger.Context, list []storage.AudioInfo) error {
		items := make([]listembed.Item, len(list))
		for i, audio := range list {
			items[i] = listembed.Item{
				Name:  audio.Command,
				Value: describeAudio(audio),
			}
		}

		le := listembed.New(ctx.Session, ctx.Bot.UserID(), items, listembed.Options{
			Title:       "Audio commands",
			Description: "Everything you can play on this server.",
			Color:       embedColor,
		})
		le.Listen(ctx.Session)
		return le.Send(ctx.Message.ChannelID)
	},
}

func describeAudio(audio storage.AudioInfo) string {
	if audio.Source == storage.SourceYouTube && audio.Time != nil {
		return fmt.Sprintf("youtube, %.0fs-%.0fs", audio.Time.Start, audio.Time.End)
	}
	return audio.Source
}
