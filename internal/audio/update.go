// /internal/audio/update.go
package audio

import (
	"errors"
	"fmt"

	"soundbot/internal/storage"
	"soundbot/internal/trigger"
)

// updateReaction shares add's parsing and validation but overwrites an
// existing command instead of creating one.
var updateReaction = &trigger.Reaction[*storage.AudioInfo]{
	ReactionName: "update",
	Short:        "Replaces the media behind an existing audio command",
	Pre: func(ctx *trigger.Context) (*storage.AudioInfo, error) {
		return parseAudioArgs(ctx.Args, messageAttachmentURL(ctx), youtubeLength)
	},
	Exec: func(ctx *trigger.Context, audio *storage.AudioInfo) error {
		if err := ctx.Storage.UpdateAudioCommand(ctx.Message.GuildID, *audio); err != nil {
			if errors.Is(err, storage.ErrCommandNotFound) {
				return trigger.Userf("That command doesn't exist yet, use 'add' to create it.")
			}
			return fmt.Errorf("failed to update audio command %q: %w", audio.Command, err)
		}
		return ctx.Reply("I updated your command!")
	},
}
