// /internal/audio/trigger.go
package audio

import (
	"strings"

	"soundbot/internal/trigger"
)

// useSubtrigger answers a bare "audio" command with the available
// subcommands instead of doing nothing.
var useSubtrigger = &trigger.Reaction[struct{}]{
	ReactionName: "help",
	Short:        "Lists the audio subcommands",
	Exec: func(ctx *trigger.Context, _ struct{}) error {
		names := []string{
			addReaction.Name(),
			updateReaction.Name(),
			playReaction.Name(),
			listReaction.Name(),
			soundboardReaction.Name(),
		}
		return ctx.Reply("Available audio subcommands: " + strings.Join(names, ", "))
	},
}

func init() {
	trigger.Register(&trigger.Trigger{
		Default: trigger.ReactionSet{
			Guild: []trigger.Handler{useSubtrigger},
		},
		Sub: trigger.ReactionSet{
			Guild: []trigger.Handler{addReaction, updateReaction, playReaction, soundboardReaction},
			All:   []trigger.Handler{listReaction},
		},
		Options: trigger.Options{
			Command: &trigger.CommandOptions{
				Commands: []string{"audio", "sound"},
				Match:    trigger.MatchStartsWith,
			},
		},
	})
}
