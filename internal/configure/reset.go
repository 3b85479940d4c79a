// /internal/configure/reset.go
package configure

import (
	"soundbot/internal/trigger"
)

// resetReaction wipes the guild record. The prefix falls back to the default
// and every audio command is gone, so it sits behind the same manager-only
// trigger as prefix changes.
var resetReaction = &trigger.Reaction[struct{}]{
	ReactionName: "reset",
	Short:        "Clears the stored settings and audio commands for this server",
	Exec: func(ctx *trigger.Context, _ struct{}) error {
		ctx.Storage.ResetGuild(ctx.Message.GuildID)
		return ctx.Reply("I cleared this server's settings and audio commands.")
	},
}
