// /internal/listembed/listembed.go
package listembed

import (
	"fmt"
	"log"

	"soundbot/internal/collector"

	"github.com/bwmarrin/discordgo"
)

// MaxItemsPerPage bounds how many fields one page renders.
const MaxItemsPerPage = 16

// Control emojis. ✅ doubles as the selected-item marker in field values.
const (
	ControlCancel   = "❌"
	ControlConfirm  = "✅"
	ControlPrevious = "◀️"
	ControlNext     = "▶️"
)

// Session is the slice of the Discord session the list embed needs.
// *discordgo.Session satisfies it.
type Session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
	MessageReactionsRemoveEmoji(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

type Options struct {
	Title       string
	Description string
	Color       int
	// Selectable enables per-item selector glyphs and CONFIRM aggregation.
	Selectable bool
	// ControlUserID restricts reactions to one user; empty allows everyone.
	ControlUserID string
	// OnConfirm receives the selected items gathered across every page.
	OnConfirm func(items []Item)
	// OnClose fires after the message is deleted, on confirm or cancel.
	OnClose func()
}

// ListEmbed paginates display items into pages of at most MaxItemsPerPage
// entries, renders the current page into one embed, and drives navigation and
// item selection through emoji reactions on that message.
type ListEmbed struct {
	session Session
	botID   string
	opts    Options

	pages   []*Page
	current int
	embed   *discordgo.MessageEmbed

	channelID string
	messageID string
	coll      *collector.Collector
	gateway   *discordgo.Session
	listening bool
}

// New builds a list embed over items. The page partition keeps the original
// item order; page count is ceil(len(items)/MaxItemsPerPage), minimum 1.
func New(session Session, botID string, items []Item, opts Options) *ListEmbed {
	return &ListEmbed{
		session: session,
		botID:   botID,
		opts:    opts,
		pages:   initPages(items, opts.Selectable),
	}
}

func initPages(items []Item, selectable bool) []*Page {
	count := (len(items) + MaxItemsPerPage - 1) / MaxItemsPerPage
	if count == 0 {
		count = 1
	}
	pages := make([]*Page, 0, count)
	for i := 0; i < count; i++ {
		start := i * MaxItemsPerPage
		end := min(start+MaxItemsPerPage, len(items))
		pages = append(pages, newPage(items[start:end], selectable))
	}
	return pages
}

// Pages returns the page partition.
func (l *ListEmbed) Pages() []*Page {
	return l.pages
}

// CurrentPage returns the index of the visible page.
func (l *ListEmbed) CurrentPage() int {
	return l.current
}

// Send renders the first page into channelID, then primes control and
// selector reactions. Controls are added before selectors so the bot finishes
// its own reactions in a predictable order.
func (l *ListEmbed) Send(channelID string) error {
	l.embed = &discordgo.MessageEmbed{
		Title:       l.opts.Title,
		Description: l.opts.Description,
		Color:       l.opts.Color,
	}
	l.renderCurrent()

	msg, err := l.session.ChannelMessageSendEmbed(channelID, l.embed)
	if err != nil {
		return fmt.Errorf("failed to send list embed: %w", err)
	}
	l.channelID = channelID
	l.messageID = msg.ID

	// The collector goes up before the first reaction is primed, so no user
	// tap on a freshly added control can slip past it.
	if l.listening && l.coll == nil {
		l.attach()
	}

	for _, control := range l.controls() {
		if err := l.session.MessageReactionAdd(channelID, msg.ID, control); err != nil {
			return fmt.Errorf("failed to add control reaction: %w", err)
		}
	}

	if l.opts.Selectable {
		if err := l.reconcileSelectors(); err != nil {
			return err
		}
	}
	return nil
}

// Listen arranges for a reaction collector feeding HandleReaction. Call it
// before Send: the collector then goes up as soon as the message exists,
// ahead of the priming reactions. Called after Send it attaches immediately.
// The collector ignores the bot's own reactions.
func (l *ListEmbed) Listen(s *discordgo.Session) {
	l.gateway = s
	l.listening = true
	if l.messageID != "" && l.coll == nil {
		l.attach()
	}
}

func (l *ListEmbed) attach() {
	l.coll = collector.NewDetached(l.messageID,
		func(r *discordgo.MessageReactionAdd) bool { return r.UserID != l.botID },
		func(r *discordgo.MessageReactionAdd) { l.HandleReaction(r.Emoji.Name, r.UserID) },
	)
	l.coll.Attach(l.gateway)
}

func (l *ListEmbed) controls() []string {
	controls := []string{ControlCancel}
	if len(l.pages) > 1 {
		controls = append(controls, ControlPrevious, ControlNext)
	}
	if l.opts.Selectable {
		controls = append(controls, ControlConfirm)
	}
	return controls
}

// HandleReaction processes one user reaction on the embed message.
func (l *ListEmbed) HandleReaction(emoji, userID string) {
	if l.opts.ControlUserID != "" && userID != l.opts.ControlUserID {
		if err := l.session.MessageReactionRemove(l.channelID, l.messageID, emoji, userID); err != nil {
			log.Printf("[WARN] [listembed] failed to strip foreign reaction: %v", err)
		}
		return
	}

	switch emoji {
	case ControlCancel:
		l.Close()
	case ControlConfirm:
		if !l.opts.Selectable {
			return
		}
		l.confirm()
	case ControlNext:
		l.SetPage(l.current + 1)
	case ControlPrevious:
		l.SetPage(l.current - 1)
	default:
		// Selector glyphs (and noise reactions) are handled by the
		// reconciliation pass: it records the selection and strips the
		// user's reaction in one sweep.
		l.refresh()
	}
}

// SetPage is the explicit page transition: it clamps out-of-range requests to
// a no-op, re-renders the fields and footer for the new page, reconciles the
// reaction set and pushes the edited embed. Even a no-op request refreshes,
// so the user's navigation reaction is stripped.
func (l *ListEmbed) SetPage(index int) {
	if index >= 0 && index < len(l.pages) {
		l.current = index
	}
	l.refresh()
}

// confirm gathers selected items from every page's tracked selection state,
// not just the visible one, then tears the embed down.
func (l *ListEmbed) confirm() {
	// Pick up any still-pending selector reactions first.
	if err := l.reconcileSelectors(); err != nil {
		log.Printf("[WARN] [listembed] reconcile before confirm failed: %v", err)
	}

	var selected []Item
	for _, page := range l.pages {
		selected = append(selected, page.Selected()...)
	}
	if l.opts.OnConfirm != nil {
		l.opts.OnConfirm(selected)
	}
	l.Close()
}

// Close deletes the embed message and stops the collector.
func (l *ListEmbed) Close() {
	if l.coll != nil {
		l.coll.Stop()
	}
	if l.messageID != "" {
		if err := l.session.ChannelMessageDelete(l.channelID, l.messageID); err != nil {
			log.Printf("[WARN] [listembed] failed to delete message: %v", err)
		}
		l.messageID = ""
	}
	if l.opts.OnClose != nil {
		l.opts.OnClose()
	}
}

func (l *ListEmbed) refresh() {
	l.renderCurrent()
	if l.opts.Selectable {
		if err := l.reconcileSelectors(); err != nil {
			log.Printf("[WARN] [listembed] selector reconcile failed: %v", err)
		}
	} else if err := l.stripForeignReactions(); err != nil {
		log.Printf("[WARN] [listembed] reaction strip failed: %v", err)
	}
	if l.messageID == "" {
		return
	}
	if _, err := l.session.ChannelMessageEditEmbed(l.channelID, l.messageID, l.embed); err != nil {
		log.Printf("[WARN] [listembed] failed to edit message: %v", err)
	}
}

func (l *ListEmbed) renderCurrent() {
	l.embed.Fields = l.pages[l.current].Fields()
	l.embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Use the arrow reactions to switch pages\n\nPage %d/%d", l.current+1, len(l.pages)),
	}
}

// reconcileSelectors brings the message's reaction set back in line with the
// visible page, in three steps:
//  1. strip every other user's reactions, recording glyph reactions as
//     selection toggles on the current page first;
//  2. remove selector glyphs that have no field on the current page;
//  3. add the bot's reaction for every current-page glyph still missing.
//
// Running it twice with no intervening user reaction changes nothing.
func (l *ListEmbed) reconcileSelectors() error {
	if l.messageID == "" {
		return nil
	}

	msg, err := l.session.ChannelMessage(l.channelID, l.messageID)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	page := l.pages[l.current]
	onPage := make(map[string]bool)
	for _, g := range page.Glyphs() {
		onPage[g] = true
	}
	inAlphabet := make(map[string]bool)
	for _, g := range Alphabet() {
		inAlphabet[g] = true
	}

	present := make(map[string]bool)
	for _, reaction := range msg.Reactions {
		emoji := reaction.Emoji.Name
		present[emoji] = true

		if err := l.stripUsers(emoji, page); err != nil {
			return err
		}

		if inAlphabet[emoji] && !onPage[emoji] {
			if err := l.session.MessageReactionsRemoveEmoji(l.channelID, l.messageID, emoji); err != nil {
				return fmt.Errorf("failed to remove stale selector %s: %w", emoji, err)
			}
		}
	}

	for _, glyph := range page.Glyphs() {
		if !present[glyph] {
			if err := l.session.MessageReactionAdd(l.channelID, l.messageID, glyph); err != nil {
				return fmt.Errorf("failed to add selector %s: %w", glyph, err)
			}
		}
	}
	return nil
}

// stripUsers removes every non-bot reaction for emoji, toggling the matching
// item's selection when the emoji is a selector on the current page.
func (l *ListEmbed) stripUsers(emoji string, page *Page) error {
	users, err := l.session.MessageReactions(l.channelID, l.messageID, emoji, 100, "", "")
	if err != nil {
		return fmt.Errorf("failed to list reaction users for %s: %w", emoji, err)
	}
	for _, user := range users {
		if user.ID == l.botID {
			continue
		}
		if page != nil {
			if idx := page.GlyphIndex(emoji); idx >= 0 {
				page.Toggle(idx)
			}
		}
		if err := l.session.MessageReactionRemove(l.channelID, l.messageID, emoji, user.ID); err != nil {
			return fmt.Errorf("failed to remove reaction of %s: %w", user.ID, err)
		}
	}
	return nil
}

// stripForeignReactions is the non-selectable variant: user reactions are
// cleared without recording selections.
func (l *ListEmbed) stripForeignReactions() error {
	if l.messageID == "" {
		return nil
	}
	msg, err := l.session.ChannelMessage(l.channelID, l.messageID)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}
	for _, reaction := range msg.Reactions {
		if err := l.stripUsers(reaction.Emoji.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
