// /internal/trigger/dispatcher.go
package trigger

import (
	"errors"
	"log"
	"strings"
)

// Dispatcher resolves inbound messages against the trigger registry and runs
// the matching reaction pipelines.
type Dispatcher struct {
	defaultPrefix string
	triggers      []*Trigger
}

func NewDispatcher(defaultPrefix string) *Dispatcher {
	return &Dispatcher{
		defaultPrefix: defaultPrefix,
		triggers:      All(),
	}
}

// Dispatch matches one message event against every registered trigger.
// Filter rejections drop the event silently; reaction errors are reported
// per the error policy (user-facing rendered, internal logged).
func (d *Dispatcher) Dispatch(ctx *Context) {
	content := strings.TrimSpace(ctx.Message.Content)
	if content == "" {
		return
	}

	prefix := d.guildPrefix(ctx)

	for _, t := range d.triggers {
		d.dispatchTrigger(ctx, t, content, prefix)
	}
}

func (d *Dispatcher) guildPrefix(ctx *Context) string {
	if ctx.InGuild() && ctx.Storage != nil {
		if prefix, err := ctx.Storage.GuildPrefix(ctx.Message.GuildID); err == nil && prefix != "" {
			return prefix
		}
	}
	return d.defaultPrefix
}

func (d *Dispatcher) dispatchTrigger(ctx *Context, t *Trigger, content, prefix string) {
	opts := t.Options

	body := content
	hasPrefix := prefix != "" && strings.HasPrefix(content, prefix)
	if hasPrefix {
		body = strings.TrimSpace(content[len(prefix):])
	}

	ignorePrefix := opts.Command != nil && opts.Command.IgnorePrefix
	if !hasPrefix && !ignorePrefix {
		return
	}

	rest, ok := matchCommand(opts.Command, body)
	if !ok {
		return
	}

	if !d.passesFilters(ctx, &opts) {
		return
	}

	handlers, args := d.selectReactions(ctx, t, rest)
	for _, h := range handlers {
		d.runReaction(ctx, h, args)
	}
}

// selectReactions picks the applicable reaction set for the message scope.
// When the first remaining word names a sub reaction, that single reaction is
// chosen and the word consumed; otherwise the default set runs.
func (d *Dispatcher) selectReactions(ctx *Context, t *Trigger, rest string) ([]Handler, string) {
	guild := ctx.InGuild()

	subName, subArgs := splitWord(rest)
	if subName != "" {
		for _, h := range t.Sub.ForScope(guild) {
			if h.Name() == subName {
				return []Handler{h}, subArgs
			}
		}
	}

	return t.Default.ForScope(guild), rest
}

func (d *Dispatcher) passesFilters(ctx *Context, opts *Options) bool {
	m := ctx.Message

	if !opts.Channels.Allows(m.ChannelID) {
		return false
	}

	if ctx.InGuild() {
		if len(opts.Roles.Include) > 0 || len(opts.Roles.Exclude) > 0 {
			var roles []string
			if m.Member != nil {
				roles = m.Member.Roles
			}
			if !opts.Roles.AllowsAny(roles) {
				return false
			}
		}

		if opts.RequiredPermissions != 0 {
			perms, err := ctx.Session.UserChannelPermissions(m.Author.ID, m.ChannelID)
			if err != nil {
				log.Printf("[WARN] [dispatch] permission lookup failed for user %s: %v", m.Author.ID, err)
				return false
			}
			if perms&opts.RequiredPermissions != opts.RequiredPermissions {
				return false
			}
		}
	}

	if opts.Condition != nil && !opts.Condition(ctx) {
		return false
	}

	return true
}

// runReaction invokes one reaction pipeline with a fresh context and applies
// the error policy from the pipeline result.
func (d *Dispatcher) runReaction(ctx *Context, h Handler, args string) {
	rctx := *ctx
	rctx.Args = args

	err := h.Run(&rctx)
	if err == nil {
		return
	}

	if errors.Is(err, ErrAborted) {
		// Cancellation is not a failure: the prompt has already unwound.
		return
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		if replyErr := rctx.Reply(userErr.Message); replyErr != nil {
			log.Printf("[ERR] [dispatch] failed to report user error: %v", replyErr)
		}
		return
	}

	log.Printf("[ERR] [dispatch] reaction %q failed: %v", h.Name(), err)
	if replyErr := rctx.Reply("Something went wrong while running that command."); replyErr != nil {
		log.Printf("[ERR] [dispatch] failed to report failure: %v", replyErr)
	}
}

// matchCommand matches body against the command options and returns the
// content that remains for the reactions. A nil CommandOptions matches
// everything (condition-only triggers).
func matchCommand(co *CommandOptions, body string) (string, bool) {
	if co == nil {
		return body, true
	}

	for _, cmd := range co.Commands {
		switch co.Match {
		case MatchStartsWith:
			// The token must be the leading word: "audio play" matches
			// "audio", "audioplay" does not.
			if strings.HasPrefix(body, cmd) {
				rest := body[len(cmd):]
				if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
					return strings.TrimSpace(rest), true
				}
			}
		case MatchExact:
			if body == cmd {
				return "", true
			}
		case MatchContains:
			if strings.Contains(body, cmd) {
				return body, true
			}
		}
	}
	return "", false
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}
