// /internal/configure/prefix.go
package configure

import (
	"fmt"
	"strings"

	"soundbot/internal/trigger"

	"github.com/bwmarrin/discordgo"
)

var prefixReaction = &trigger.Reaction[string]{
	ReactionName: "prefix",
	Short:        "Changes the bot's command prefix for this server",
	Pre: func(ctx *trigger.Context) (string, error) {
		prefix := strings.TrimSpace(ctx.Args)
		if prefix == "" {
			return "", trigger.Userf("You didn't provide the desired prefix!")
		}
		return prefix, nil
	},
	Exec: func(ctx *trigger.Context, prefix string) error {
		if err := ctx.Storage.SetGuildPrefix(ctx.Message.GuildID, prefix); err != nil {
			return fmt.Errorf("failed to update prefix: %w", err)
		}
		return ctx.Reply("I updated the prefix.")
	},
}

func init() {
	trigger.Register(&trigger.Trigger{
		Sub: trigger.ReactionSet{
			Guild: []trigger.Handler{prefixReaction, resetReaction},
		},
		Options: trigger.Options{
			Command: &trigger.CommandOptions{
				Commands: []string{"configure", "config"},
				Match:    trigger.MatchStartsWith,
			},
			// Changing server configuration is for managers only.
			RequiredPermissions: discordgo.PermissionManageServer,
		},
	})
}
