// /internal/collector/collector.go
package collector

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Filter decides whether a reaction event is collected. Callers exclude the
// bot's own user ID here so the bot priming its own reactions is invisible.
type Filter func(r *discordgo.MessageReactionAdd) bool

// OnCollect is invoked for every accepted reaction, in arrival order.
type OnCollect func(r *discordgo.MessageReactionAdd)

// Collector gathers emoji reactions on a single message until stopped.
// discordgo has no built-in collector utility, so this wraps a session
// handler registration and keeps the collected emoji -> users state.
//
// Attach the collector before adding any reactions to the message, or the
// first events are lost.
type Collector struct {
	messageID string
	filter    Filter
	onCollect OnCollect

	mu         sync.Mutex
	users      map[string]map[string]bool // emoji -> reacting user IDs
	order      []string                   // emojis in first-arrival order
	stopped    bool
	detach     func()
	dispatchMu sync.Mutex
}

// New creates a collector for messageID and registers it with the session.
// A nil session skips registration; events can still be fed through Handle.
func New(s *discordgo.Session, messageID string, filter Filter, onCollect OnCollect) *Collector {
	c := NewDetached(messageID, filter, onCollect)
	c.Attach(s)
	return c
}

// NewDetached creates a collector without registering a session handler.
// Construction and attachment are split so a callback can reference its own
// collector: wire everything up first, then Attach.
func NewDetached(messageID string, filter Filter, onCollect OnCollect) *Collector {
	return &Collector{
		messageID: messageID,
		filter:    filter,
		onCollect: onCollect,
		users:     make(map[string]map[string]bool),
	}
}

// Attach registers the collector with the session. A nil session is a no-op;
// events can still be fed through Handle.
func (c *Collector) Attach(s *discordgo.Session) {
	if s == nil {
		return
	}
	detach := s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		c.Handle(r)
	})
	c.mu.Lock()
	c.detach = detach
	c.mu.Unlock()
}

// Handle feeds one reaction event into the collector. Events for other
// messages or rejected by the filter are ignored. Callbacks for one collector
// run serialized, in arrival order.
func (c *Collector) Handle(r *discordgo.MessageReactionAdd) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if c.stopped || r.MessageID != c.messageID || (c.filter != nil && !c.filter(r)) {
		c.mu.Unlock()
		return
	}

	emoji := r.Emoji.Name
	if c.users[emoji] == nil {
		c.users[emoji] = make(map[string]bool)
		c.order = append(c.order, emoji)
	}
	c.users[emoji][r.UserID] = true
	c.mu.Unlock()

	if c.onCollect != nil {
		c.onCollect(r)
	}
}

// Forget drops a collected reaction, e.g. after the bot removed it from the
// message (the dispose analog for rejected confirms and stripped users).
func (c *Collector) Forget(emoji, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	users, ok := c.users[emoji]
	if !ok {
		return
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(c.users, emoji)
		for i, e := range c.order {
			if e == emoji {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// Collected returns the collected emojis in first-arrival order.
func (c *Collector) Collected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.order...)
}

// Stop detaches the collector from the session. Idempotent.
func (c *Collector) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	detach := c.detach
	c.mu.Unlock()

	if detach != nil {
		detach()
	}
}
