// /internal/audio/soundboard.go
package audio

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"soundbot/internal/collector"
	"soundbot/internal/listembed"
	"soundbot/internal/storage"
	"soundbot/internal/trigger"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

const (
	cancelEmoji  = "❌"
	confirmEmoji = "✅"

	countdownStep  = 5 * time.Second
	footerErrorTTL = 3 * time.Second
)

// BoardItem pairs a stored audio command with its assigned glyph. The
// assignment is positional and stays stable for the lifetime of one prompt.
type BoardItem struct {
	Audio storage.AudioInfo
	Emoji string
}

// promptSession is the slice of the Discord session the prompt and board
// flows drive. *discordgo.Session satisfies it.
type promptSession interface {
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
}

// soundboardReaction is the two-stage picker flow: Pre prompts the invoker to
// select commands, Exec renders the live board. Both stages delete their
// message and stop their timers and collectors on every exit path.
var soundboardReaction = &trigger.Reaction[[]BoardItem]{
	ReactionName: "soundboard",
	Short:        "Prompts you to pick audio commands and builds a soundboard from them",
	Pre:          pickBoardItems,
	Exec:         runBoard,
}

// assignEmojis pops glyphs off the reversed alphabet, one per command.
func assignEmojis(list []storage.AudioInfo) []BoardItem {
	emojis := listembed.ReversedAlphabet()
	items := make([]BoardItem, 0, len(list))
	for _, audio := range list {
		if len(emojis) == 0 {
			break
		}
		glyph := emojis[len(emojis)-1]
		emojis = emojis[:len(emojis)-1]
		items = append(items, BoardItem{Audio: audio, Emoji: glyph})
	}
	return items
}

func boardEmbed(title, description string, items []BoardItem) *embed.Embed {
	e := embed.NewEmbed().
		SetTitle(title).
		SetDescription(description).
		SetColor(embedColor)
	for _, item := range items {
		e = e.AddField(item.Audio.Command, item.Emoji)
	}
	return e.InlineAllFields()
}

func itemForEmoji(items []BoardItem, emoji string) *BoardItem {
	for i := range items {
		if items[i].Emoji == emoji {
			return &items[i]
		}
	}
	return nil
}

// reactInOrder primes the bot's reactions: cancel first, then every item
// glyph, then confirm. The order is a protocol contract with the user, and
// the collector must already be attached when this runs.
func reactInOrder(s promptSession, channelID, messageID string, items []BoardItem, withConfirm bool) error {
	if err := s.MessageReactionAdd(channelID, messageID, cancelEmoji); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.MessageReactionAdd(channelID, messageID, item.Emoji); err != nil {
			return err
		}
	}
	if withConfirm {
		return s.MessageReactionAdd(channelID, messageID, confirmEmoji)
	}
	return nil
}

func removeUserReaction(s promptSession, r *discordgo.MessageReactionAdd) {
	if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.Name, r.UserID); err != nil {
		log.Printf("[WARN] [audio] failed to remove reaction: %v", err)
	}
}

// pickBoardItems is stage one: the builder prompt. Only the invoking member's
// reactions count; the prompt self-destructs when the countdown runs out.
func pickBoardItems(ctx *trigger.Context) ([]BoardItem, error) {
	list, err := ctx.Storage.ListAudioCommands(ctx.Message.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio commands: %w", err)
	}
	if len(list) == 0 {
		return nil, trigger.Userf("There are no audio commands on this server (yet).")
	}

	items := assignEmojis(list)

	e := boardEmbed("Soundboard Picker",
		"Use the corresponding emojis to add or remove clips from the soundboard.\n"+
			"You can cancel with  "+cancelEmoji+"  or create the soundboard with  "+confirmEmoji,
		items).
		SetFooter(expiryFooter(ctx.Bot.SoundboardExpiry()))

	prompt, err := ctx.ReplyEmbed(e.MessageEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to send picker prompt: %w", err)
	}

	p := newPickerPrompt(ctx.Session, prompt.ChannelID, prompt.ID, e, items,
		ctx.Message.Author.ID, ctx.Bot.UserID(),
		ctx.Bot.SoundboardExpiry(), countdownStep)

	// Attach before priming any reaction so the collector sees every event.
	p.coll.Attach(ctx.Session)
	return p.run()
}

type pickResult struct {
	items []BoardItem
	err   error
}

// pickerPrompt holds the state of one builder prompt. The collector callback
// is wired at construction, before any session attachment, so the full prompt
// protocol can be driven by feeding events through the collector.
type pickerPrompt struct {
	session   promptSession
	channelID string
	messageID string
	embed     *embed.Embed
	items     []BoardItem
	invokerID string
	expiry    time.Duration
	step      time.Duration

	coll  *collector.Collector
	resCh chan pickResult
}

func newPickerPrompt(session promptSession, channelID, messageID string, e *embed.Embed,
	items []BoardItem, invokerID, botID string, expiry, step time.Duration) *pickerPrompt {
	p := &pickerPrompt{
		session:   session,
		channelID: channelID,
		messageID: messageID,
		embed:     e,
		items:     items,
		invokerID: invokerID,
		expiry:    expiry,
		step:      step,
		resCh:     make(chan pickResult, 1),
	}
	p.coll = collector.NewDetached(messageID,
		func(r *discordgo.MessageReactionAdd) bool { return r.UserID != botID },
		p.onReaction)
	return p
}

// resolve settles the prompt once; later calls are dropped.
func (p *pickerPrompt) resolve(items []BoardItem, err error) {
	select {
	case p.resCh <- pickResult{items, err}:
	default:
	}
}

func (p *pickerPrompt) onReaction(r *discordgo.MessageReactionAdd) {
	if r.UserID != p.invokerID {
		// Only the invoker drives the picker.
		removeUserReaction(p.session, r)
		p.coll.Forget(r.Emoji.Name, r.UserID)
		return
	}
	switch r.Emoji.Name {
	case cancelEmoji:
		p.resolve(nil, trigger.ErrAborted)
	case confirmEmoji:
		picked := pickedItems(p.coll, p.items)
		if len(picked) == 0 {
			// Confirming an empty selection is rejected; the prompt keeps
			// waiting.
			removeUserReaction(p.session, r)
			p.coll.Forget(confirmEmoji, r.UserID)
			return
		}
		p.resolve(picked, nil)
	}
}

// run blocks until the prompt settles, then tears the message down. Every
// exit path stops the countdown and the collector and deletes the prompt.
func (p *pickerPrompt) run() ([]BoardItem, error) {
	stopCountdown := make(chan struct{})
	go p.countdown(stopCountdown)

	go func() {
		if err := reactInOrder(p.session, p.channelID, p.messageID, p.items, true); err != nil {
			// If nothing was collected the prompt is unusable; fail it.
			if len(p.coll.Collected()) == 0 {
				p.resolve(nil, fmt.Errorf("failed to add prompt reactions: %w", err))
			}
		}
	}()

	res := <-p.resCh

	close(stopCountdown)
	p.coll.Stop()
	if err := p.session.ChannelMessageDelete(p.channelID, p.messageID); err != nil {
		log.Printf("[WARN] [audio] failed to delete picker prompt: %v", err)
	}

	return res.items, res.err
}

// countdown ticks the footer down every step and expires the prompt silently
// at zero.
func (p *pickerPrompt) countdown(stop <-chan struct{}) {
	remaining := p.expiry
	ticker := time.NewTicker(p.step)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining -= p.step
			if remaining <= 0 {
				p.resolve(nil, trigger.ErrAborted)
				return
			}
			p.embed.SetFooter(expiryFooter(remaining))
			if _, err := p.session.ChannelMessageEditEmbed(p.channelID, p.messageID, p.embed.MessageEmbed); err != nil {
				log.Printf("[WARN] [audio] failed to update countdown: %v", err)
			}
		}
	}
}

func expiryFooter(remaining time.Duration) string {
	return fmt.Sprintf("This message will be deleted automatically in %d seconds.", int(remaining.Seconds()))
}

// pickedItems snapshots the collected non-control reactions into board items.
func pickedItems(coll *collector.Collector, items []BoardItem) []BoardItem {
	var picked []BoardItem
	for _, emoji := range coll.Collected() {
		if emoji == cancelEmoji || emoji == confirmEmoji {
			continue
		}
		if item := itemForEmoji(items, emoji); item != nil {
			picked = append(picked, *item)
		}
	}
	return picked
}

// runBoard is stage two: the live board. Each item's emoji plays its clip in
// the reacting user's voice channel. The board has no expiry; it stays up
// until someone cancels it.
func runBoard(ctx *trigger.Context, board []BoardItem) error {
	if len(board) == 0 {
		return nil
	}

	guildID := ctx.Message.GuildID
	e := boardEmbed("Soundboard", "React with the corresponding emojis to play the clip.", board)

	msg, err := ctx.ReplyEmbed(e.MessageEmbed)
	if err != nil {
		return fmt.Errorf("failed to send soundboard: %w", err)
	}

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(done) }) }

	// Transient footer errors restore themselves after a short delay; the
	// timer must never outlive the board or it would edit a deleted message.
	var footerMu sync.Mutex
	var footerTimer *time.Timer
	closed := false
	setTransientFooter := func(text string) {
		footerMu.Lock()
		defer footerMu.Unlock()
		if closed {
			return
		}
		if footerTimer != nil {
			footerTimer.Stop()
		}
		e.SetFooter(text)
		if _, err := ctx.Session.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, e.MessageEmbed); err != nil {
			log.Printf("[WARN] [audio] failed to set board footer: %v", err)
		}
		footerTimer = time.AfterFunc(footerErrorTTL, func() {
			footerMu.Lock()
			defer footerMu.Unlock()
			if closed {
				return
			}
			e.MessageEmbed.Footer = nil
			if _, err := ctx.Session.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, e.MessageEmbed); err != nil {
				log.Printf("[WARN] [audio] failed to restore board footer: %v", err)
			}
		})
	}

	// Construction before attachment: the callback may run as soon as the
	// session handler is registered, and it reads the collector.
	var coll *collector.Collector
	coll = collector.NewDetached(msg.ID,
		func(r *discordgo.MessageReactionAdd) bool { return r.UserID != ctx.Bot.UserID() },
		func(r *discordgo.MessageReactionAdd) {
			if r.Emoji.Name == cancelEmoji {
				finish()
				return
			}

			item := itemForEmoji(board, r.Emoji.Name)
			if item == nil {
				// Someone reacted with an emoji that is not on the board.
				return
			}

			removeUserReaction(ctx.Session, r)
			coll.Forget(r.Emoji.Name, r.UserID)

			channelID, ok := ctx.Bot.FindUserVoiceState(guildID, r.UserID)
			if !ok {
				setTransientFooter("You're not in a voicechannel!")
				return
			}

			go func() {
				if err := Play(ctx, guildID, channelID, &item.Audio); err != nil {
					var userErr *trigger.UserError
					if errors.As(err, &userErr) {
						setTransientFooter(userErr.Message)
						return
					}
					log.Printf("[ERR] [audio] soundboard playback failed: %v", err)
					setTransientFooter("Error")
				}
			}()
		})
	coll.Attach(ctx.Session)

	go func() {
		if err := reactInOrder(ctx.Session, msg.ChannelID, msg.ID, board, false); err != nil {
			if len(coll.Collected()) == 0 {
				log.Printf("[ERR] [audio] failed to add board reactions: %v", err)
				finish()
			}
		}
	}()

	<-done

	footerMu.Lock()
	closed = true
	if footerTimer != nil {
		footerTimer.Stop()
	}
	footerMu.Unlock()

	coll.Stop()
	if err := ctx.Session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		log.Printf("[WARN] [audio] failed to delete soundboard: %v", err)
	}
	return nil
}
