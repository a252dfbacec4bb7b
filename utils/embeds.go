package utils

import (
	"fmt"
	"strings"
	"time"

	"wzyss-go/giveaway"

	"github.com/bwmarrin/discordgo"
)

// Truncate shortens s to at most max bytes.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Mention renders a user mention from an id.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// RelativeTimestamp renders Discord's relative timestamp markup ("in 2 hours").
func RelativeTimestamp(unix int64) string {
	return fmt.Sprintf("<t:%d:R>", unix)
}

// GiveawayEmbed renders the hosting message embed for any lifecycle state.
func GiveawayEmbed(rec *giveaway.Record) *discordgo.MessageEmbed {
	switch rec.Status {
	case giveaway.StatusCancelled:
		return &discordgo.MessageEmbed{
			Title:       "Giveaway Cancelled",
			Description: "This giveaway has been cancelled.",
			Color:       ColorCancelled,
		}
	case giveaway.StatusActive:
		return activeEmbed(rec)
	default:
		return endedEmbed(rec)
	}
}

func giveawayTitle(rec *giveaway.Record) string {
	if len(rec.Prizes) == 0 {
		return "Giveaway"
	}
	return Truncate(rec.Prizes[0], MaxEmbedTitleLength)
}

func prizesField(rec *giveaway.Record) *discordgo.MessageEmbedField {
	if len(rec.Prizes) <= 1 {
		return nil
	}
	var lines []string
	for i, p := range rec.Prizes {
		if i >= MaxListedPrizes {
			lines = append(lines, fmt.Sprintf("… and %d more", len(rec.Prizes)-MaxListedPrizes))
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, Truncate(p, 200)))
	}
	return &discordgo.MessageEmbedField{
		Name:  "Prizes",
		Value: Truncate(strings.Join(lines, "\n"), MaxEmbedFieldLength),
	}
}

func activeEmbed(rec *giveaway.Record) *discordgo.MessageEmbed {
	desc := rec.Description
	if desc == "" {
		desc = fmt.Sprintf("React with %s to enter!", rec.Emoji)
	}
	if rec.ClaimEnabled && rec.ClaimSeconds > 0 {
		desc += fmt.Sprintf(
			"\n\nWinners must claim their prize within **%s** of the giveaway ending or it will be re-rolled.",
			HumanizeDuration(time.Duration(rec.ClaimSeconds)*time.Second),
		)
	}

	embed := &discordgo.MessageEmbed{
		Title:       giveawayTitle(rec),
		Description: Truncate(desc, MaxEmbedDescriptionLength),
		Color:       BotColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("React with %s to enter", rec.Emoji),
		},
	}
	if field := prizesField(rec); field != nil {
		embed.Fields = append(embed.Fields, field)
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Ends", Value: RelativeTimestamp(rec.EndAt), Inline: true},
		&discordgo.MessageEmbedField{Name: "Entries", Value: fmt.Sprintf("%d", len(rec.Entries)), Inline: true},
		&discordgo.MessageEmbedField{Name: "Winners", Value: fmt.Sprintf("%d", rec.WinnerCount), Inline: true},
		&discordgo.MessageEmbedField{Name: "Host", Value: Mention(rec.HostID), Inline: true},
	)
	return embed
}

// endedEmbed covers the ended, claimed and forfeited states.
func endedEmbed(rec *giveaway.Record) *discordgo.MessageEmbed {
	desc := rec.Description
	color := ColorEnded
	if rec.Status == giveaway.StatusForfeited {
		color = ColorForfeited
		desc = "The claim window lapsed with no remaining entrants to draw from."
	}

	embed := &discordgo.MessageEmbed{
		Title:       giveawayTitle(rec),
		Description: Truncate(desc, MaxEmbedDescriptionLength),
		Color:       color,
	}
	if field := prizesField(rec); field != nil {
		embed.Fields = append(embed.Fields, field)
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Entries", Value: fmt.Sprintf("%d", len(rec.Entries)), Inline: true},
	)

	if len(rec.WinnerIDs) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   winnersFieldName(rec.WinnerCount),
			Value:  "No valid entries.",
			Inline: true,
		})
		return embed
	}

	var mentions []string
	for i, id := range rec.WinnerIDs {
		if i >= MaxListedWinners {
			mentions = append(mentions, fmt.Sprintf("(+%d more)", len(rec.WinnerIDs)-MaxListedWinners))
			break
		}
		line := Mention(id)
		if rec.ClaimEnabled && rec.ClaimSeconds > 0 {
			if rec.HasClaimed(id) {
				line += " — claimed"
			} else {
				line += " — unclaimed"
			}
		}
		mentions = append(mentions, line)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   winnersFieldName(len(rec.WinnerIDs)),
		Value:  Truncate(strings.Join(mentions, "\n"), MaxEmbedFieldLength),
		Inline: true,
	})

	switch {
	case rec.Status == giveaway.StatusClaimed:
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "All prizes have been claimed."}
	case rec.Status == giveaway.StatusEnded && rec.ClaimDeadline > 0:
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Winners: press Claim within %s or your prize will be re-rolled.",
				HumanizeDuration(time.Duration(rec.ClaimSeconds)*time.Second)),
		}
	}
	return embed
}

func winnersFieldName(n int) string {
	if n == 1 {
		return "Winner"
	}
	return "Winners"
}

// WinnerAnnouncement builds the channel message congratulating the current
// winner set.
func WinnerAnnouncement(rec *giveaway.Record, rerolled bool) string {
	if len(rec.WinnerIDs) == 0 {
		return fmt.Sprintf("The giveaway for **%s** ended with no valid entries.", Truncate(giveawayTitle(rec), 100))
	}

	mentions := make([]string, 0, len(rec.WinnerIDs))
	for _, id := range rec.WinnerIDs {
		mentions = append(mentions, Mention(id))
	}

	var msg string
	if rerolled {
		msg = fmt.Sprintf("\U0001f3b2 Re-rolled! The new winner of **%s** is %s.",
			Truncate(giveawayTitle(rec), 100), strings.Join(mentions, ", "))
	} else {
		msg = fmt.Sprintf("%s Congratulations %s! You won **%s**!",
			rec.Emoji, strings.Join(mentions, ", "), Truncate(giveawayTitle(rec), 100))
	}
	if rec.Status == giveaway.StatusEnded && rec.ClaimEnabled && rec.ClaimSeconds > 0 {
		msg += fmt.Sprintf(" Claim your prize with the button on the giveaway message within %s.",
			HumanizeDuration(time.Duration(rec.ClaimSeconds)*time.Second))
	}
	return Truncate(msg, MaxMessageLength)
}

// BuilderEmbed renders the interactive builder's configuration summary.
func BuilderEmbed(draft *giveaway.Draft) *discordgo.MessageEmbed {
	prizesStr := "*Not set*"
	if len(draft.Prizes) > 0 {
		shown := make([]string, 0, len(draft.Prizes))
		for i, p := range draft.Prizes {
			if i >= 5 {
				shown = append(shown, fmt.Sprintf("(+%d more)", len(draft.Prizes)-5))
				break
			}
			shown = append(shown, Truncate(p, 50))
		}
		prizesStr = strings.Join(shown, ", ")
	}

	winnerCount := draft.WinnerCount
	if winnerCount < giveaway.MinWinnerCount {
		winnerCount = giveaway.MinWinnerCount
	}
	durationStr := "*Not set*"
	if draft.DurationSeconds > 0 {
		durationStr = HumanizeDuration(time.Duration(draft.DurationSeconds) * time.Second)
	}
	emoji := draft.Emoji
	if emoji == "" {
		emoji = giveaway.DefaultEmoji
	}
	claimStr := "Disabled"
	if draft.ClaimEnabled {
		claimStr = fmt.Sprintf("Enabled (%s window)", HumanizeDuration(time.Duration(draft.ClaimSeconds)*time.Second))
	}
	channelStr := "Current channel"
	if draft.ChannelID != "" {
		channelStr = "<#" + draft.ChannelID + ">"
	}

	return &discordgo.MessageEmbed{
		Title:       "Giveaway Builder",
		Description: "Use the buttons below to configure your giveaway, then press **Launch**.",
		Color:       BotColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prizes", Value: Truncate(prizesStr, MaxEmbedFieldLength), Inline: false},
			{Name: "Winners", Value: fmt.Sprintf("%d", winnerCount), Inline: true},
			{Name: "Duration", Value: durationStr, Inline: true},
			{Name: "Entry emoji", Value: emoji, Inline: true},
			{Name: "Claim", Value: claimStr, Inline: true},
			{Name: "Channel", Value: channelStr, Inline: true},
		},
	}
}
