package trigger

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures the contexts it was invoked with.
type recordingHandler struct {
	name  string
	calls []string // Args values per invocation
	err   error
}

func (h *recordingHandler) Name() string        { return h.name }
func (h *recordingHandler) Description() string { return "" }
func (h *recordingHandler) Run(ctx *Context) error {
	h.calls = append(h.calls, ctx.Args)
	return h.err
}

func messageCtx(content, guildID string) *Context {
	return &Context{
		Message: &discordgo.MessageCreate{
			Message: &discordgo.Message{
				Content:   content,
				GuildID:   guildID,
				ChannelID: "chan-1",
				Author:    &discordgo.User{ID: "user-1"},
			},
		},
	}
}

func singleTriggerDispatcher(t *Trigger) *Dispatcher {
	return &Dispatcher{defaultPrefix: "!", triggers: []*Trigger{t}}
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		name     string
		opts     *CommandOptions
		body     string
		wantRest string
		wantOK   bool
	}{
		{"starts-with match", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "audio add foo", "add foo", true},
		{"starts-with is case sensitive", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "Audio add", "", false},
		{"starts-with no match", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "video add", "", false},
		{"starts-with stops at a word boundary", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "audiophile rocks", "", false},
		{"starts-with rejects a fused subcommand", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "audioplay mysound", "", false},
		{"bare token matches with empty rest", &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}, "audio", "", true},
		{"second alias matches", &CommandOptions{Commands: []string{"audio", "sound"}, Match: MatchStartsWith}, "sound list", "list", true},
		{"exact match", &CommandOptions{Commands: []string{"ping"}, Match: MatchExact}, "ping", "", true},
		{"exact rejects trailing text", &CommandOptions{Commands: []string{"ping"}, Match: MatchExact}, "ping now", "", false},
		{"contains match keeps body", &CommandOptions{Commands: []string{"help"}, Match: MatchContains}, "I need help please", "I need help please", true},
		{"nil options match everything", nil, "anything", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, ok := matchCommand(tt.opts, tt.body)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestFilterExcludeWins(t *testing.T) {
	f := Filter{Include: []string{"a"}, Exclude: []string{"a"}}
	assert.False(t, f.Allows("a"), "an entity on both lists is denied")

	f = Filter{Exclude: []string{"b"}}
	assert.True(t, f.Allows("a"))
	assert.False(t, f.Allows("b"))

	f = Filter{Include: []string{"a"}}
	assert.True(t, f.Allows("a"))
	assert.False(t, f.Allows("c"), "a non-empty include list denies everything else")

	assert.True(t, Filter{}.Allows("anything"))
}

func TestFilterAllowsAny(t *testing.T) {
	f := Filter{Include: []string{"mod"}, Exclude: []string{"muted"}}
	assert.True(t, f.AllowsAny([]string{"mod", "member"}))
	assert.False(t, f.AllowsAny([]string{"mod", "muted"}), "one excluded role denies the whole set")
	assert.False(t, f.AllowsAny([]string{"member"}))
	assert.False(t, f.AllowsAny(nil))
}

func TestDispatchPrefixHandling(t *testing.T) {
	h := &recordingHandler{name: "default"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{Command: &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}},
	})

	d.Dispatch(messageCtx("audio play foo", "guild-1"))
	assert.Empty(t, h.calls, "without prefix the trigger must not fire")

	d.Dispatch(messageCtx("!audio play foo", "guild-1"))
	require.Len(t, h.calls, 1)
	assert.Equal(t, "play foo", h.calls[0])
}

func TestDispatchIgnorePrefix(t *testing.T) {
	h := &recordingHandler{name: "default"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{Command: &CommandOptions{
			Commands: []string{"hello"}, Match: MatchStartsWith, IgnorePrefix: true,
		}},
	})

	d.Dispatch(messageCtx("hello there", "guild-1"))
	require.Len(t, h.calls, 1)
	assert.Equal(t, "there", h.calls[0])
}

func TestDispatchSubReactionRouting(t *testing.T) {
	def := &recordingHandler{name: "default"}
	sub := &recordingHandler{name: "play"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{Guild: []Handler{def}},
		Sub:     ReactionSet{Guild: []Handler{sub}},
		Options: Options{Command: &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}},
	})

	d.Dispatch(messageCtx("!audio play mysound", "guild-1"))
	require.Len(t, sub.calls, 1)
	assert.Equal(t, "mysound", sub.calls[0], "sub name is consumed from the args")
	assert.Empty(t, def.calls, "a routed sub reaction bypasses the defaults")

	d.Dispatch(messageCtx("!audio", "guild-1"))
	assert.Len(t, def.calls, 1, "bare command runs the default set")
}

func TestDispatchCommandWordBoundary(t *testing.T) {
	def := &recordingHandler{name: "default"}
	sub := &recordingHandler{name: "play"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{def}},
		Sub:     ReactionSet{All: []Handler{sub}},
		Options: Options{Command: &CommandOptions{Commands: []string{"audio"}, Match: MatchStartsWith}},
	})

	d.Dispatch(messageCtx("!audiophile rocks", "guild-1"))
	assert.Empty(t, def.calls, "a longer word must not fire the trigger")

	d.Dispatch(messageCtx("!audioplay mysound", "guild-1"))
	assert.Empty(t, sub.calls, "a fused subcommand must not route")
	assert.Empty(t, def.calls)

	d.Dispatch(messageCtx("!audio play mysound", "guild-1"))
	require.Len(t, sub.calls, 1)
	assert.Equal(t, "mysound", sub.calls[0])
}

func TestDispatchScopeSelection(t *testing.T) {
	guildOnly := &recordingHandler{name: "guild"}
	directOnly := &recordingHandler{name: "direct"}
	everywhere := &recordingHandler{name: "all"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{
			Guild:  []Handler{guildOnly},
			Direct: []Handler{directOnly},
			All:    []Handler{everywhere},
		},
		Options: Options{Command: &CommandOptions{Commands: []string{"x"}, Match: MatchStartsWith}},
	})

	d.Dispatch(messageCtx("!x", "guild-1"))
	assert.Len(t, guildOnly.calls, 1)
	assert.Empty(t, directOnly.calls)
	assert.Len(t, everywhere.calls, 1)

	d.Dispatch(messageCtx("!x", ""))
	assert.Len(t, guildOnly.calls, 1, "guild reactions must not run for a DM")
	assert.Len(t, directOnly.calls, 1)
	assert.Len(t, everywhere.calls, 2)
}

func TestDispatchChannelFilter(t *testing.T) {
	h := &recordingHandler{name: "default"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{
			Command:  &CommandOptions{Commands: []string{"x"}, Match: MatchStartsWith},
			Channels: Filter{Exclude: []string{"chan-1"}},
		},
	})

	d.Dispatch(messageCtx("!x", "guild-1"))
	assert.Empty(t, h.calls, "excluded channel drops the event silently")
}

func TestDispatchRoleFilter(t *testing.T) {
	h := &recordingHandler{name: "default"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{
			Command: &CommandOptions{Commands: []string{"x"}, Match: MatchStartsWith},
			Roles:   Filter{Include: []string{"dj"}},
		},
	})

	ctx := messageCtx("!x", "guild-1")
	ctx.Message.Member = &discordgo.Member{Roles: []string{"member"}}
	d.Dispatch(ctx)
	assert.Empty(t, h.calls)

	ctx.Message.Member.Roles = []string{"dj"}
	d.Dispatch(ctx)
	assert.Len(t, h.calls, 1)
}

func TestDispatchConditionCheck(t *testing.T) {
	h := &recordingHandler{name: "default"}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{
			Command:   &CommandOptions{Commands: []string{"x"}, Match: MatchStartsWith},
			Condition: func(ctx *Context) bool { return ctx.Message.GuildID == "special" },
		},
	})

	d.Dispatch(messageCtx("!x", "guild-1"))
	assert.Empty(t, h.calls)

	d.Dispatch(messageCtx("!x", "special"))
	assert.Len(t, h.calls, 1)
}

func TestDispatchAbortedIsSilent(t *testing.T) {
	h := &recordingHandler{name: "default", err: ErrAborted}
	d := singleTriggerDispatcher(&Trigger{
		Default: ReactionSet{All: []Handler{h}},
		Options: Options{Command: &CommandOptions{Commands: []string{"x"}, Match: MatchStartsWith}},
	})

	// A cancelled prompt unwinds without touching the session; reaching the
	// reply path here would panic on the nil session.
	assert.NotPanics(t, func() {
		d.Dispatch(messageCtx("!x", "guild-1"))
	})
	assert.Len(t, h.calls, 1)
}

func TestReactionPipeline(t *testing.T) {
	t.Run("pre payload reaches exec", func(t *testing.T) {
		var got int
		r := &Reaction[int]{
			ReactionName: "r",
			Pre:          func(*Context) (int, error) { return 42, nil },
			Exec:         func(_ *Context, p int) error { got = p; return nil },
		}
		require.NoError(t, r.Run(&Context{}))
		assert.Equal(t, 42, got)
	})

	t.Run("pre failure skips exec", func(t *testing.T) {
		executed := false
		r := &Reaction[int]{
			ReactionName: "r",
			Pre:          func(*Context) (int, error) { return 0, Userf("bad input") },
			Exec:         func(*Context, int) error { executed = true; return nil },
		}
		err := r.Run(&Context{})
		var userErr *UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, "bad input", userErr.Message)
		assert.False(t, executed)
	})

	t.Run("nil pre runs exec with zero payload", func(t *testing.T) {
		var got []string
		r := &Reaction[[]string]{
			ReactionName: "r",
			Exec:         func(_ *Context, p []string) error { got = p; return nil },
		}
		require.NoError(t, r.Run(&Context{}))
		assert.Nil(t, got)
	})
}

func TestUserErrorClassification(t *testing.T) {
	err := Userf("you forgot %s", "the name")
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "you forgot the name", userErr.Error())

	assert.False(t, errors.Is(err, ErrAborted))
}

func TestSplitWord(t *testing.T) {
	tests := []struct {
		in, word, rest string
	}{
		{"play foo bar", "play", "foo bar"},
		{"  play  ", "play", ""},
		{"", "", ""},
		{"single", "single", ""},
	}
	for _, tt := range tests {
		word, rest := splitWord(tt.in)
		assert.Equal(t, tt.word, word)
		assert.Equal(t, tt.rest, rest)
	}
}
