package utils

import (
	"strings"

	"wzyss-go/giveaway"

	"github.com/bwmarrin/discordgo"
)

// CreateActionRow creates an action row with buttons
func CreateActionRow(buttons ...discordgo.MessageComponent) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: buttons,
	}
}

// CreateButton creates a button component
func CreateButton(customID, label string, style discordgo.ButtonStyle, disabled bool, emoji *discordgo.ComponentEmoji) discordgo.MessageComponent {
	button := discordgo.Button{
		CustomID: customID,
		Label:    label,
		Style:    style,
		Disabled: disabled,
	}

	if emoji != nil {
		button.Emoji = emoji
	}

	return button
}

// ClaimCustomID builds the claim button custom ID for a giveaway message. The
// message id is enough to route: the guild comes with the interaction.
func ClaimCustomID(messageID string) string {
	return ClaimCustomIDPrefix + messageID
}

// ParseClaimCustomID extracts the giveaway message id from a claim button
// custom ID. Returns false if the id is not a claim button.
func ParseClaimCustomID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, ClaimCustomIDPrefix) {
		return "", false
	}
	return strings.TrimPrefix(customID, ClaimCustomIDPrefix), true
}

// ClaimButtonRow returns the component row attached to a giveaway message
// while an unclaimed prize is waiting. Disabled once every prize is claimed.
func ClaimButtonRow(rec *giveaway.Record, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		CreateActionRow(
			CreateButton(
				ClaimCustomID(rec.MessageID),
				"Claim Prize",
				discordgo.SuccessButton,
				disabled,
				&discordgo.ComponentEmoji{Name: "\U0001f381"},
			),
		),
	}
}

// GiveawayComponents returns the component rows for the hosting message in
// its current state. Only an ended giveaway with a live claim window carries
// an enabled claim button.
func GiveawayComponents(rec *giveaway.Record) []discordgo.MessageComponent {
	if !rec.ClaimEnabled || rec.ClaimSeconds <= 0 {
		return nil
	}
	switch rec.Status {
	case giveaway.StatusEnded:
		if len(rec.WinnerIDs) == 0 {
			return nil
		}
		return ClaimButtonRow(rec, false)
	case giveaway.StatusClaimed:
		return ClaimButtonRow(rec, true)
	default:
		return nil
	}
}

// RespondEphemeral sends a plain ephemeral text reply to an interaction.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: Truncate(content, MaxMessageLength),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondEmbed sends an embed reply to an interaction, optionally ephemeral
// and with components.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// UpdateComponentInteraction replaces the message the component lives on.
func UpdateComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// InteractionUserID returns the invoking user's id for both guild and DM
// interactions.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// IsUserAuthorized checks if the user is authorized to interact with a component
func IsUserAuthorized(i *discordgo.InteractionCreate, authorizedUserID string) bool {
	return InteractionUserID(i) == authorizedUserID
}
