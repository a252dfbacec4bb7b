package cogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wzyss-go/giveaway"
	"wzyss-go/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// GiveawayCog wires the giveaway lifecycle to Discord: slash commands,
// reaction-based entry tracking and the claim button.
type GiveawayCog struct {
	Manager *giveaway.Manager
	Store   *giveaway.Store
	Tracker *giveaway.Tracker
	Builder *GiveawayBuilder
}

// NewGiveawayCog assembles the cog.
func NewGiveawayCog(manager *giveaway.Manager, store *giveaway.Store, tracker *giveaway.Tracker, builder *GiveawayBuilder) *GiveawayCog {
	c := &GiveawayCog{
		Manager: manager,
		Store:   store,
		Tracker: tracker,
		Builder: builder,
	}
	builder.launch = c.LaunchInChannel
	return c
}

// Command returns the /giveaway application command definition.
func (c *GiveawayCog) Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "giveaway",
		Description: "Run giveaways in this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "start",
				Description: "Start a giveaway in one command",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "prize", Description: "Prize to give away (separate multiple with ;)", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "duration", Description: "How long the giveaway runs, e.g. 1d, 2h30m", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "winners", Description: "Number of winners (default 1)"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Extra text shown on the giveaway"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Entry emoji (default \U0001f389)"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "claim_duration", Description: "Require winners to claim within this window, e.g. 24h"},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to post in (default here)"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Build a giveaway interactively",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "end",
				Description: "End an active giveaway now and draw winners",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Giveaway message id", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reroll",
				Description: "Re-draw winners for an ended giveaway",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Giveaway message id", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "edit",
				Description: "Edit an active giveaway",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Giveaway message id", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "prize", Description: "New primary prize"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "duration", Description: "New duration from now, e.g. 2h"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "New description"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "cancel",
				Description: "Cancel a giveaway without drawing winners",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Giveaway message id", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List active giveaways in this server",
			},
		},
	}
}

// HandleInteraction routes every interaction the cog cares about. Returns
// true when the interaction was consumed.
func (c *GiveawayCog) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != "giveaway" {
			return false
		}
		c.handleCommand(s, i, data)
		return true

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if messageID, ok := utils.ParseClaimCustomID(customID); ok {
			c.handleClaim(s, i, messageID)
			return true
		}
		if strings.HasPrefix(customID, utils.BuilderCustomIDPrefix) {
			c.Builder.HandleComponent(s, i, customID)
			return true
		}
		return false

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if strings.HasPrefix(customID, utils.BuilderCustomIDPrefix) {
			c.Builder.HandleModal(s, i, customID)
			return true
		}
		return false
	}
	return false
}

func (c *GiveawayCog) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if i.GuildID == "" {
		respondError(s, i, "Giveaways only work in servers.")
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "start":
		c.handleStart(s, i, opts)
	case "create":
		c.Builder.Open(s, i)
	case "end":
		c.handleEnd(s, i, opts["message_id"].StringValue())
	case "reroll":
		c.handleReroll(s, i, opts["message_id"].StringValue())
	case "edit":
		c.handleEdit(s, i, opts)
	case "cancel":
		c.handleCancel(s, i, opts["message_id"].StringValue())
	case "list":
		c.handleList(s, i)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (c *GiveawayCog) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	duration, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil {
		respondError(s, i, fmt.Sprintf("Could not read the duration: %v", err))
		return
	}

	o := giveaway.Options{
		Prizes:          splitPrizes(opts["prize"].StringValue()),
		WinnerCount:     1,
		DurationSeconds: int64(duration.Seconds()),
		Emoji:           giveaway.DefaultEmoji,
	}
	if opt, ok := opts["winners"]; ok {
		o.WinnerCount = int(opt.IntValue())
	}
	if opt, ok := opts["description"]; ok {
		o.Description = opt.StringValue()
	}
	if opt, ok := opts["emoji"]; ok && strings.TrimSpace(opt.StringValue()) != "" {
		o.Emoji = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := opts["claim_duration"]; ok {
		claim, err := utils.ParseDuration(opt.StringValue())
		if err != nil {
			respondError(s, i, fmt.Sprintf("Could not read the claim duration: %v", err))
			return
		}
		o.ClaimEnabled = true
		o.ClaimSeconds = int64(claim.Seconds())
	}
	if err := o.Validate(); err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}

	channelID := i.ChannelID
	if opt, ok := opts["channel"]; ok {
		channelID = opt.ChannelValue(nil).ID
	}

	rec, err := c.LaunchInChannel(s, i.GuildID, channelID, utils.InteractionUserID(i), o)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	_ = utils.RespondEphemeral(s, i, fmt.Sprintf("Giveaway launched in <#%s>! It ends %s.", channelID, utils.RelativeTimestamp(rec.EndAt)))
}

// LaunchInChannel posts the hosting message, seeds the entry reaction and
// creates the lifecycle record. Shared by /giveaway start and the builder.
// If record creation fails the hosting message is deleted again so no orphan
// message lingers.
func (c *GiveawayCog) LaunchInChannel(s *discordgo.Session, guildID, channelID, hostID string, o giveaway.Options) (*giveaway.Record, error) {
	// Render a preview of the record for the hosting message. The real record
	// only exists once we know the message id.
	preview := giveaway.NewRecord(guildID, channelID, hostID, "", time.Now(), o)
	msg, err := s.ChannelMessageSendEmbed(channelID, utils.GiveawayEmbed(preview))
	if err != nil {
		return nil, fmt.Errorf("failed to post giveaway message: %w", err)
	}

	rec, err := c.Manager.Launch(context.Background(), guildID, channelID, hostID, msg.ID, o)
	if err != nil {
		if delErr := s.ChannelMessageDelete(channelID, msg.ID); delErr != nil {
			log.Warn().Err(delErr).Str("channel_id", channelID).Str("message_id", msg.ID).Msg("Failed to clean up giveaway message after launch failure")
		}
		return nil, err
	}

	// Seed the entry reaction so participants can click rather than hunt for
	// the emoji. Best-effort: a missing reaction doesn't block entries.
	if err := s.MessageReactionAdd(channelID, msg.ID, rec.Emoji); err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Str("emoji", rec.Emoji).Msg("Failed to seed giveaway entry reaction")
	}
	return rec, nil
}

func (c *GiveawayCog) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) {
	if !c.authorize(s, i, messageID) {
		return
	}
	rec, err := c.Manager.End(context.Background(), i.GuildID, messageID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if len(rec.WinnerIDs) == 0 {
		_ = utils.RespondEphemeral(s, i, "Giveaway ended. Nobody entered, so there are no winners.")
		return
	}
	_ = utils.RespondEphemeral(s, i, fmt.Sprintf("Giveaway ended with %d winner(s).", len(rec.WinnerIDs)))
}

func (c *GiveawayCog) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) {
	if !c.authorize(s, i, messageID) {
		return
	}
	rec, err := c.Manager.Reroll(context.Background(), i.GuildID, messageID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	_ = utils.RespondEphemeral(s, i, fmt.Sprintf("Rerolled: %d new winner(s) drawn.", len(rec.WinnerIDs)))
}

func (c *GiveawayCog) handleEdit(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	messageID := opts["message_id"].StringValue()
	if !c.authorize(s, i, messageID) {
		return
	}

	var edit giveaway.Edit
	if opt, ok := opts["prize"]; ok {
		prize := opt.StringValue()
		edit.Prize = &prize
	}
	if opt, ok := opts["description"]; ok {
		desc := opt.StringValue()
		edit.Description = &desc
	}
	if opt, ok := opts["duration"]; ok {
		duration, err := utils.ParseDuration(opt.StringValue())
		if err != nil {
			respondError(s, i, fmt.Sprintf("Could not read the duration: %v", err))
			return
		}
		seconds := int64(duration.Seconds())
		edit.DurationSeconds = &seconds
	}

	rec, err := c.Manager.ApplyEdit(context.Background(), i.GuildID, messageID, edit)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	_ = utils.RespondEphemeral(s, i, fmt.Sprintf("Giveaway updated. It now ends %s.", utils.RelativeTimestamp(rec.EndAt)))
}

func (c *GiveawayCog) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) {
	if !c.authorize(s, i, messageID) {
		return
	}
	if _, err := c.Manager.Cancel(context.Background(), i.GuildID, messageID); err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	_ = utils.RespondEphemeral(s, i, "Giveaway cancelled.")
}

func (c *GiveawayCog) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	records, err := c.Store.ListActive(context.Background(), i.GuildID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if len(records) == 0 {
		_ = utils.RespondEphemeral(s, i, "No active giveaways in this server.")
		return
	}

	var lines []string
	for n, rec := range records {
		if n >= utils.MaxListedPrizes {
			lines = append(lines, fmt.Sprintf("… and %d more", len(records)-utils.MaxListedPrizes))
			break
		}
		lines = append(lines, fmt.Sprintf("• **%s** in <#%s> — %d entries, ends %s",
			utils.Truncate(rec.Prizes[0], 60), rec.ChannelID, len(rec.Entries), utils.RelativeTimestamp(rec.EndAt)))
	}
	_ = utils.RespondEphemeral(s, i, strings.Join(lines, "\n"))
}

// handleClaim processes a press of the claim button on a giveaway message.
func (c *GiveawayCog) handleClaim(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) {
	userID := utils.InteractionUserID(i)
	rec, err := c.Manager.Claim(context.Background(), i.GuildID, messageID, userID)
	if err != nil {
		respondError(s, i, userErrorMessage(err))
		return
	}
	if rec.Status == giveaway.StatusClaimed {
		_ = utils.RespondEphemeral(s, i, "Prize claimed — that was the last one. Congratulations!")
		return
	}
	_ = utils.RespondEphemeral(s, i, "Prize claimed. Congratulations!")
}

// HandleReactionAdd feeds entry reactions into the tracker.
func (c *GiveawayCog) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}
	_, err := c.Tracker.MarkEntry(context.Background(), r.GuildID, r.MessageID, r.UserID, reactionEmoji(&r.Emoji))
	if err != nil {
		log.Error().Err(err).Str("guild_id", r.GuildID).Str("message_id", r.MessageID).Msg("Failed to record giveaway entry")
	}
}

// HandleReactionRemove withdraws entries when the reaction is removed.
func (c *GiveawayCog) HandleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}
	_, err := c.Tracker.UnmarkEntry(context.Background(), r.GuildID, r.MessageID, r.UserID, reactionEmoji(&r.Emoji))
	if err != nil {
		log.Error().Err(err).Str("guild_id", r.GuildID).Str("message_id", r.MessageID).Msg("Failed to withdraw giveaway entry")
	}
}

// reactionEmoji renders a gateway emoji the way records store it: the bare
// unicode glyph, or name:id for custom emoji.
func reactionEmoji(e *discordgo.Emoji) string {
	if e.ID != "" {
		return e.Name + ":" + e.ID
	}
	return e.Name
}

// authorize checks the invoker is the giveaway's host or has Manage Server,
// responding with the refusal itself when not. A missing record falls through
// to the operation so the user gets the not-found message.
func (c *GiveawayCog) authorize(s *discordgo.Session, i *discordgo.InteractionCreate, messageID string) bool {
	rec, err := c.Store.Get(context.Background(), i.GuildID, messageID)
	if err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			respondError(s, i, userErrorMessage(err))
			return false
		}
		return true
	}
	if rec.HostID == utils.InteractionUserID(i) {
		return true
	}
	if i.Member != nil && i.Member.Permissions&discordgo.PermissionManageServer != 0 {
		return true
	}
	respondError(s, i, "Only the giveaway host or someone with Manage Server can do that.")
	return false
}

// userErrorMessage maps lifecycle errors onto messages fit for an ephemeral
// reply. Anything unmapped is logged and reported generically.
func userErrorMessage(err error) string {
	var verr *giveaway.ValidationError
	switch {
	case errors.As(err, &verr):
		return "That doesn't look right: " + verr.Error() + "."
	case errors.Is(err, giveaway.ErrNotFound):
		return "I couldn't find a giveaway with that message id."
	case errors.Is(err, giveaway.ErrInvalidState):
		return "That giveaway isn't in a state where this is possible."
	case errors.Is(err, giveaway.ErrNotWinner):
		return "Only winners of this giveaway can claim a prize."
	case errors.Is(err, giveaway.ErrAlreadyClaimed):
		return "You have already claimed your prize."
	case errors.Is(err, giveaway.ErrNoEligibleEntries):
		return "There are no remaining entrants to draw from."
	default:
		log.Error().Err(err).Msg("Giveaway command failed")
		return "Something went wrong. Please try again."
	}
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	if err := utils.RespondEphemeral(s, i, msg); err != nil {
		log.Warn().Err(err).Msg("Failed to send error response")
	}
}

// splitPrizes turns "a; b; c" into a prize list.
func splitPrizes(input string) []string {
	parts := strings.Split(input, ";")
	prizes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			prizes = append(prizes, p)
		}
	}
	return prizes
}
