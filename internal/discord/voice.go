// /internal/discord/voice.go
package discord

import "log"

// FindUserVoiceState returns the voice channel a user currently sits in.
func (b *Bot) FindUserVoiceState(guildID, userID string) (string, bool) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		guild, err = b.dg.Guild(guildID)
		if err != nil {
			log.Printf("[WARN] Failed to fetch guild %s: %v", guildID, err)
			return "", false
		}
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}
