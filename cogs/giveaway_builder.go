package cogs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wzyss-go/giveaway"
	"wzyss-go/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// launchFunc posts the hosting message and creates the record. Provided by
// the giveaway cog so both /giveaway start and the builder launch the same
// way.
type launchFunc func(s *discordgo.Session, guildID, channelID, hostID string, o giveaway.Options) (*giveaway.Record, error)

// GiveawayBuilder is the interactive giveaway assembler: an ephemeral panel
// of buttons, each opening a modal that edits one field of the user's draft.
// Drafts persist across restarts; the session id in every custom ID ties a
// rendered panel to the draft generation it showed, so a leftover panel from
// an older run cannot mutate a newer draft.
type GiveawayBuilder struct {
	drafts *giveaway.DraftStore
	launch launchFunc
}

// NewGiveawayBuilder wires the builder over the draft store.
func NewGiveawayBuilder(drafts *giveaway.DraftStore) *GiveawayBuilder {
	return &GiveawayBuilder{drafts: drafts}
}

// Builder actions, used as the last segment of the custom ID.
const (
	builderActionPrizes  = "prizes"
	builderActionWinners = "winners"
	builderActionTiming  = "timing"
	builderActionEmoji   = "emoji"
	builderActionClaim   = "claim"
	builderActionChannel = "channel"
	builderActionPreview = "preview"
	builderActionLaunch  = "launch"
	builderActionCancel  = "cancel"
)

func builderCustomID(userID, session, action string) string {
	return utils.BuilderCustomIDPrefix + userID + ":" + session + ":" + action
}

// parseBuilderCustomID splits a builder custom ID into owner, session and
// action. Returns false for malformed ids.
func parseBuilderCustomID(customID string) (userID, session, action string, ok bool) {
	rest := strings.TrimPrefix(customID, utils.BuilderCustomIDPrefix)
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Open starts (or resumes) the invoker's builder panel.
func (b *GiveawayBuilder) Open(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := utils.InteractionUserID(i)
	draft, err := b.drafts.Update(context.Background(), i.GuildID, userID, func(d *giveaway.Draft) {
		// A fresh session invalidates panels from previous runs of the builder.
		d.Session = uuid.NewString()
	})
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}

	embed := utils.BuilderEmbed(draft)
	components := b.panelComponents(userID, draft.Session)
	if err := utils.RespondEmbed(s, i, embed, components, true); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to open giveaway builder")
	}
}

func (b *GiveawayBuilder) panelComponents(userID, session string) []discordgo.MessageComponent {
	id := func(action string) string { return builderCustomID(userID, session, action) }
	return []discordgo.MessageComponent{
		utils.CreateActionRow(
			utils.CreateButton(id(builderActionPrizes), "Prizes", discordgo.PrimaryButton, false, nil),
			utils.CreateButton(id(builderActionWinners), "Winners", discordgo.PrimaryButton, false, nil),
			utils.CreateButton(id(builderActionTiming), "Duration", discordgo.PrimaryButton, false, nil),
		),
		utils.CreateActionRow(
			utils.CreateButton(id(builderActionEmoji), "Emoji", discordgo.SecondaryButton, false, nil),
			utils.CreateButton(id(builderActionClaim), "Claim", discordgo.SecondaryButton, false, nil),
			utils.CreateButton(id(builderActionChannel), "Channel", discordgo.SecondaryButton, false, nil),
		),
		utils.CreateActionRow(
			utils.CreateButton(id(builderActionPreview), "Preview", discordgo.SecondaryButton, false,
				&discordgo.ComponentEmoji{Name: "\U0001f441"}),
			utils.CreateButton(id(builderActionLaunch), "Launch", discordgo.SuccessButton, false,
				&discordgo.ComponentEmoji{Name: "\U0001f389"}),
			utils.CreateButton(id(builderActionCancel), "Cancel", discordgo.DangerButton, false, nil),
		),
	}
}

// HandleComponent routes a press of one of the builder's buttons.
func (b *GiveawayBuilder) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ownerID, session, action, ok := parseBuilderCustomID(customID)
	if !ok {
		return
	}
	if !utils.IsUserAuthorized(i, ownerID) {
		respondError(s, i, "Only the person building this giveaway can use these buttons.")
		return
	}

	draft, err := b.drafts.Get(context.Background(), i.GuildID, ownerID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if draft.Session != session {
		respondError(s, i, "This builder panel is out of date. Run /giveaway create again.")
		return
	}

	switch action {
	case builderActionPreview:
		b.handlePreview(s, i, ownerID, draft)
	case builderActionLaunch:
		b.handleLaunch(s, i, ownerID, draft)
	case builderActionCancel:
		b.handleCancel(s, i, ownerID)
	default:
		b.openModal(s, i, ownerID, session, action, draft)
	}
}

// previewRecord renders the draft as the record it would become on launch,
// without persisting anything. Fails with the same validation errors launch
// would.
func previewRecord(draft *giveaway.Draft, guildID, channelID, hostID string) (*giveaway.Record, error) {
	o := draft.Options()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if draft.ChannelID != "" {
		channelID = draft.ChannelID
	}
	return giveaway.NewRecord(guildID, channelID, hostID, "", time.Now(), o), nil
}

// handlePreview shows the giveaway exactly as it would post, ephemerally.
func (b *GiveawayBuilder) handlePreview(s *discordgo.Session, i *discordgo.InteractionCreate, ownerID string, draft *giveaway.Draft) {
	rec, err := previewRecord(draft, i.GuildID, i.ChannelID, ownerID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if err := utils.RespondEmbed(s, i, utils.GiveawayEmbed(rec), nil, true); err != nil {
		log.Warn().Err(err).Str("user_id", ownerID).Msg("Failed to send giveaway preview")
	}
}

func (b *GiveawayBuilder) openModal(s *discordgo.Session, i *discordgo.InteractionCreate, ownerID, session, action string, draft *giveaway.Draft) {
	modal := &discordgo.InteractionResponseData{
		CustomID: builderCustomID(ownerID, session, action),
	}

	textInput := func(id, label, placeholder, value string, required bool) discordgo.MessageComponent {
		return utils.CreateActionRow(discordgo.TextInput{
			CustomID:    id,
			Label:       label,
			Style:       discordgo.TextInputShort,
			Placeholder: placeholder,
			Value:       value,
			Required:    required,
		})
	}

	switch action {
	case builderActionPrizes:
		modal.Title = "Giveaway prizes"
		modal.Components = []discordgo.MessageComponent{
			utils.CreateActionRow(discordgo.TextInput{
				CustomID:    "prizes",
				Label:       "Prizes (one per line)",
				Style:       discordgo.TextInputParagraph,
				Placeholder: "Nitro\nSteam key",
				Value:       strings.Join(draft.Prizes, "\n"),
				Required:    true,
			}),
			utils.CreateActionRow(discordgo.TextInput{
				CustomID:    "description",
				Label:       "Description (optional)",
				Style:       discordgo.TextInputParagraph,
				Value:       draft.Description,
				Required:    false,
			}),
		}
	case builderActionWinners:
		value := ""
		if draft.WinnerCount > 0 {
			value = fmt.Sprintf("%d", draft.WinnerCount)
		}
		modal.Title = "Number of winners"
		modal.Components = []discordgo.MessageComponent{
			textInput("winners", "Winners (1-50)", "1", value, true),
		}
	case builderActionTiming:
		value := ""
		if draft.DurationSeconds > 0 {
			value = utils.HumanizeDuration(secondsToDuration(draft.DurationSeconds))
		}
		modal.Title = "Giveaway duration"
		modal.Components = []discordgo.MessageComponent{
			textInput("duration", "Duration", "1d, 2h30m, 1 week ...", value, true),
		}
	case builderActionEmoji:
		modal.Title = "Entry emoji"
		modal.Components = []discordgo.MessageComponent{
			textInput("emoji", "Emoji participants react with", giveaway.DefaultEmoji, draft.Emoji, false),
		}
	case builderActionClaim:
		value := ""
		if draft.ClaimEnabled && draft.ClaimSeconds > 0 {
			value = utils.HumanizeDuration(secondsToDuration(draft.ClaimSeconds))
		}
		modal.Title = "Claim window"
		modal.Components = []discordgo.MessageComponent{
			textInput("claim", "Claim window (empty to disable)", "24h", value, false),
		}
	case builderActionChannel:
		modal.Title = "Target channel"
		modal.Components = []discordgo.MessageComponent{
			textInput("channel", "Channel id or #mention (empty = here)", "", draft.ChannelID, false),
		}
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	})
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to open builder modal")
	}
}

// HandleModal applies a submitted modal to the draft and re-renders the
// panel.
func (b *GiveawayBuilder) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ownerID, session, action, ok := parseBuilderCustomID(customID)
	if !ok || !utils.IsUserAuthorized(i, ownerID) {
		return
	}

	values := modalValues(i.ModalSubmitData())
	var inputErr string

	draft, err := b.drafts.Update(context.Background(), i.GuildID, ownerID, func(d *giveaway.Draft) {
		if d.Session != session {
			inputErr = "This builder panel is out of date. Run /giveaway create again."
			return
		}
		switch action {
		case builderActionPrizes:
			var prizes []string
			for _, line := range strings.Split(values["prizes"], "\n") {
				if line = strings.TrimSpace(line); line != "" {
					prizes = append(prizes, line)
				}
			}
			d.Prizes = prizes
			d.Description = strings.TrimSpace(values["description"])
		case builderActionWinners:
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(values["winners"]), "%d", &n); err != nil {
				inputErr = "Winners must be a number."
				return
			}
			d.WinnerCount = n
		case builderActionTiming:
			duration, err := utils.ParseDuration(values["duration"])
			if err != nil {
				inputErr = fmt.Sprintf("Could not read the duration: %v", err)
				return
			}
			d.DurationSeconds = int64(duration.Seconds())
		case builderActionEmoji:
			d.Emoji = strings.TrimSpace(values["emoji"])
		case builderActionClaim:
			raw := strings.TrimSpace(values["claim"])
			if raw == "" {
				d.ClaimEnabled = false
				d.ClaimSeconds = 0
				return
			}
			claim, err := utils.ParseDuration(raw)
			if err != nil {
				inputErr = fmt.Sprintf("Could not read the claim window: %v", err)
				return
			}
			d.ClaimEnabled = true
			d.ClaimSeconds = int64(claim.Seconds())
		case builderActionChannel:
			d.ChannelID = parseChannelRef(values["channel"])
		}
	})
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if inputErr != "" {
		respondError(s, i, inputErr)
		return
	}

	embed := utils.BuilderEmbed(draft)
	components := b.panelComponents(ownerID, session)
	if err := utils.UpdateComponentInteraction(s, i, embed, components); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to refresh builder panel")
	}
}

func (b *GiveawayBuilder) handleLaunch(s *discordgo.Session, i *discordgo.InteractionCreate, ownerID string, draft *giveaway.Draft) {
	o := draft.Options()
	if err := o.Validate(); err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}

	channelID := draft.ChannelID
	if channelID == "" {
		channelID = i.ChannelID
	}

	rec, err := b.launch(s, i.GuildID, channelID, ownerID, o)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if err := b.drafts.Clear(context.Background(), i.GuildID, ownerID); err != nil {
		log.Warn().Err(err).Str("guild_id", i.GuildID).Str("user_id", ownerID).Msg("Failed to clear giveaway draft after launch")
	}

	done := &discordgo.MessageEmbed{
		Title:       "Giveaway launched",
		Description: fmt.Sprintf("Your giveaway is live in <#%s> and ends %s.", channelID, utils.RelativeTimestamp(rec.EndAt)),
		Color:       utils.ColorEnded,
	}
	if err := utils.UpdateComponentInteraction(s, i, done, []discordgo.MessageComponent{}); err != nil {
		log.Warn().Err(err).Msg("Failed to close builder panel after launch")
	}
}

func (b *GiveawayBuilder) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, ownerID string) {
	if err := b.drafts.Clear(context.Background(), i.GuildID, ownerID); err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	closed := &discordgo.MessageEmbed{
		Title:       "Builder closed",
		Description: "Your draft has been discarded.",
		Color:       utils.ColorCancelled,
	}
	if err := utils.UpdateComponentInteraction(s, i, closed, []discordgo.MessageComponent{}); err != nil {
		log.Warn().Err(err).Msg("Failed to close builder panel")
	}
}

// modalValues flattens the submitted modal's text inputs by custom id.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, row := range data.Components {
		actionRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

// parseChannelRef accepts a raw channel id or a <#id> mention.
func parseChannelRef(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "<#")
	s = strings.TrimSuffix(s, ">")
	return s
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
