// /internal/trigger/trigger.go
package trigger

// Match determines how a command token is matched against message content.
type Match int

const (
	// MatchStartsWith requires the token to be a case-sensitive prefix of the
	// trimmed, prefix-stripped content.
	MatchStartsWith Match = iota
	MatchExact
	MatchContains
)

// CommandOptions declares the literal tokens a user writes to hit a trigger.
type CommandOptions struct {
	// Commands lists the accepted tokens, e.g. ["audio", "sound"].
	Commands []string
	Match    Match
	// IgnorePrefix makes the trigger fire even without the bot prefix.
	IgnorePrefix bool
}

// Filter is a channel or role allow/deny list. An entity present in both
// lists is denied: exclude wins over include.
type Filter struct {
	Include []string
	Exclude []string
}

// Allows reports whether id passes the filter.
func (f Filter) Allows(id string) bool {
	for _, excluded := range f.Exclude {
		if excluded == id {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, included := range f.Include {
		if included == id {
			return true
		}
	}
	return false
}

// AllowsAny reports whether any of the ids passes the filter. Exclude is
// checked against every id first, so one excluded role denies the whole set.
func (f Filter) AllowsAny(ids []string) bool {
	for _, id := range ids {
		for _, excluded := range f.Exclude {
			if excluded == id {
				return false
			}
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, id := range ids {
		for _, included := range f.Include {
			if included == id {
				return true
			}
		}
	}
	return false
}

type Options struct {
	Command *CommandOptions
	// Channels filters by channel ID, Roles by role ID of the issuing member.
	Channels Filter
	Roles    Filter
	// RequiredPermissions is a permission bitmask; all bits must be held.
	RequiredPermissions int64
	// Condition is an optional custom predicate evaluated last.
	Condition func(*Context) bool
}

// ReactionSet partitions reactions by where they apply.
type ReactionSet struct {
	Guild  []Handler
	Direct []Handler
	All    []Handler
}

// ForScope returns the reactions applicable to a guild or direct message.
func (rs ReactionSet) ForScope(guild bool) []Handler {
	if guild {
		return append(append([]Handler{}, rs.Guild...), rs.All...)
	}
	return append(append([]Handler{}, rs.Direct...), rs.All...)
}

// Trigger is a registered command pattern plus its filter rules and the
// reactions to run on a match. Triggers are built once at startup and never
// mutated afterwards.
type Trigger struct {
	Default ReactionSet
	Sub     ReactionSet
	Options Options
}

var registry []*Trigger

// Register adds a trigger to the process-wide registry. Called from package
// init functions before the bot connects.
func Register(t *Trigger) {
	registry = append(registry, t)
}

// All returns every registered trigger.
func All() []*Trigger {
	return registry
}
