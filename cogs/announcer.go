package cogs

import (
	"wzyss-go/giveaway"
	"wzyss-go/utils"

	"github.com/bwmarrin/discordgo"
)

// DiscordAnnouncer renders lifecycle state onto Discord: it keeps the hosting
// message's embed and claim button in sync and posts winner announcements.
// All calls are best-effort; the manager treats failures as presentation-only.
type DiscordAnnouncer struct {
	session *discordgo.Session
}

// NewDiscordAnnouncer wraps a session.
func NewDiscordAnnouncer(session *discordgo.Session) *DiscordAnnouncer {
	return &DiscordAnnouncer{session: session}
}

// GiveawayUpdated re-renders the hosting message for the record's current
// state.
func (a *DiscordAnnouncer) GiveawayUpdated(rec *giveaway.Record) error {
	embed := utils.GiveawayEmbed(rec)
	components := utils.GiveawayComponents(rec)
	return utils.EditGiveawayMessage(a.session, rec.ChannelID, rec.MessageID, embed, components)
}

// WinnersAnnounced posts the winner ping as a reply to the hosting message.
func (a *DiscordAnnouncer) WinnersAnnounced(rec *giveaway.Record, rerolled bool) error {
	content := utils.WinnerAnnouncement(rec, rerolled)
	return utils.SendChannelReply(a.session, rec.ChannelID, rec.MessageID, content)
}
