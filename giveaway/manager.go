package giveaway

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Announcer is the presentation collaborator. State changes are authoritative
// and presentation is best-effort: the manager logs announcer errors and never
// rolls a transition back because a message could not be rendered or sent.
type Announcer interface {
	// GiveawayUpdated re-renders the hosting message after a visible change.
	GiveawayUpdated(rec *Record) error
	// WinnersAnnounced posts a winner announcement in the giveaway channel.
	// rerolled distinguishes replacement draws from the initial draw.
	WinnersAnnounced(rec *Record, rerolled bool) error
}

// Edit carries the fields a host may change on an active giveaway. Nil fields
// are left untouched.
type Edit struct {
	Prize           *string
	Description     *string
	DurationSeconds *int64
}

// Manager drives the giveaway lifecycle: it owns the end and claim-expiry
// timers, applies every state transition through the store, and triggers
// announcements.
type Manager struct {
	store     *Store
	sched     Scheduler
	announcer Announcer

	now func() time.Time
	rng *rand.Rand
}

// NewManager wires the lifecycle manager.
func NewManager(store *Store, sched Scheduler, announcer Announcer) *Manager {
	return &Manager{
		store:     store,
		sched:     sched,
		announcer: announcer,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Launch creates the record for a giveaway whose hosting message was just
// sent, and arms its end timer.
func (m *Manager) Launch(ctx context.Context, guildID, channelID, hostID, messageID string, o Options) (*Record, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	rec := NewRecord(guildID, channelID, hostID, messageID, m.now(), o)
	if err := m.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	m.armEnd(rec)
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Int("winner_count", rec.WinnerCount).
		Time("end_at", time.Unix(rec.EndAt, 0)).
		Msg("Giveaway launched")
	return rec, nil
}

// End ends an active giveaway now, drawing winners from the current entries.
// Used both by the end timer and by the explicit "end now" command.
func (m *Manager) End(ctx context.Context, guildID, messageID string) (*Record, error) {
	m.sched.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerEnd})

	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusActive {
			return ErrInvalidState
		}
		winners := DrawInitial(r, m.rng)
		r.Status = StatusEnded
		r.setWinners(winners)
		if r.ClaimEnabled && r.ClaimSeconds > 0 && len(winners) > 0 {
			r.ClaimDeadline = m.now().Unix() + r.ClaimSeconds
		} else {
			r.ClaimDeadline = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.announceUpdated(rec)
	if len(rec.WinnerIDs) > 0 {
		m.announceWinners(rec, false)
	}
	if rec.ClaimDeadline > 0 {
		m.armClaim(rec)
	}
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Int("entries", len(rec.Entries)).
		Int("winners", len(rec.WinnerIDs)).
		Msg("Giveaway ended")
	return rec, nil
}

// Claim records a winner's claim. Completing the winner set transitions the
// giveaway to claimed and cancels the claim-expiry timer.
func (m *Manager) Claim(ctx context.Context, guildID, messageID, userID string) (*Record, error) {
	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusEnded {
			return ErrInvalidState
		}
		if !r.IsWinner(userID) {
			return ErrNotWinner
		}
		if r.HasClaimed(userID) {
			return ErrAlreadyClaimed
		}
		r.ClaimedIDs = append(r.ClaimedIDs, userID)
		if r.AllClaimed() {
			r.Status = StatusClaimed
			r.ClaimDeadline = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rec.Status == StatusClaimed {
		m.sched.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerClaim})
	}
	m.announceUpdated(rec)
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Str("user_id", userID).
		Bool("all_claimed", rec.Status == StatusClaimed).
		Msg("Giveaway prize claimed")
	return rec, nil
}

// Reroll replaces the winner set on host command, drawing from the entries
// outside the current winners. Allowed from ended and claimed; a reroll of a
// fully claimed giveaway reopens the claim cycle.
func (m *Manager) Reroll(ctx context.Context, guildID, messageID string) (*Record, error) {
	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusEnded && r.Status != StatusClaimed {
			return ErrInvalidState
		}
		winners := DrawReplacement(r, m.rng)
		if len(winners) == 0 {
			return ErrNoEligibleEntries
		}
		r.Status = StatusEnded
		r.setWinners(winners)
		if r.ClaimEnabled && r.ClaimSeconds > 0 {
			r.ClaimDeadline = m.now().Unix() + r.ClaimSeconds
		} else {
			r.ClaimDeadline = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rec.ClaimDeadline > 0 {
		m.armClaim(rec)
	} else {
		m.sched.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerClaim})
	}
	m.announceUpdated(rec)
	m.announceWinners(rec, true)
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Int("winners", len(rec.WinnerIDs)).
		Msg("Giveaway rerolled")
	return rec, nil
}

// ApplyEdit changes prize, description and/or duration of an active giveaway.
// A new duration re-arms the end timer from now.
func (m *Manager) ApplyEdit(ctx context.Context, guildID, messageID string, edit Edit) (*Record, error) {
	if edit.Prize == nil && edit.Description == nil && edit.DurationSeconds == nil {
		return nil, &ValidationError{Field: "edit", Reason: "provide at least one of prize, duration, description"}
	}
	if edit.Prize != nil && strings.TrimSpace(*edit.Prize) == "" {
		return nil, &ValidationError{Field: "prize", Reason: "must not be empty"}
	}
	if edit.DurationSeconds != nil {
		if *edit.DurationSeconds < MinDurationSeconds || *edit.DurationSeconds > MaxDurationSeconds {
			return nil, &ValidationError{
				Field:  "duration",
				Reason: "must be between 60 seconds and 365 days",
			}
		}
	}

	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusActive {
			return ErrInvalidState
		}
		if edit.Prize != nil {
			prizes := append([]string{*edit.Prize}, r.Prizes[min(len(r.Prizes), 1):]...)
			r.Prizes = trimPrizes(prizes)
			r.Prize = r.Prizes[0]
		}
		if edit.Description != nil {
			r.Description = *edit.Description
		}
		if edit.DurationSeconds != nil {
			r.EndAt = m.now().Unix() + *edit.DurationSeconds
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if edit.DurationSeconds != nil {
		m.armEnd(rec)
	}
	m.announceUpdated(rec)
	return rec, nil
}

// Cancel force-terminates an active or ended giveaway. Both timers are
// cancelled before returning so no stale fire can revive the record; the
// status guard in End makes a racing fire a no-op either way.
func (m *Manager) Cancel(ctx context.Context, guildID, messageID string) (*Record, error) {
	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusActive && r.Status != StatusEnded {
			return ErrInvalidState
		}
		r.Status = StatusCancelled
		r.ClaimDeadline = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.sched.CancelGiveaway(guildID, messageID)
	m.announceUpdated(rec)
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Msg("Giveaway cancelled")
	return rec, nil
}

// Remove deletes a record outright (administrative cleanup). Idempotent.
func (m *Manager) Remove(ctx context.Context, guildID, messageID string) error {
	m.sched.CancelGiveaway(guildID, messageID)
	return m.store.Delete(ctx, guildID, messageID)
}

// Recover scans one guild's records after a restart. Active records with a
// past end time end immediately (via a zero-delay timer); ended records with
// an unexpired claim deadline get their claim timer re-armed for the
// remaining duration, and expired deadlines trigger the redraw path now.
func (m *Manager) Recover(ctx context.Context, guildID string) error {
	records, err := m.store.List(ctx, guildID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		switch {
		case rec.Status == StatusActive:
			m.armEnd(rec)
		case rec.Status == StatusEnded && rec.ClaimEnabled && rec.ClaimDeadline > 0 && !rec.AllClaimed():
			m.armClaim(rec)
		}
	}
	log.Debug().Str("guild_id", guildID).Int("records", len(records)).Msg("Giveaway recovery scan complete")
	return nil
}

func (m *Manager) armEnd(rec *Record) {
	key := TimerKey{GuildID: rec.GuildID, MessageID: rec.MessageID, Kind: TimerEnd}
	delay := time.Duration(rec.EndAt-m.now().Unix()) * time.Second
	guildID, messageID := rec.GuildID, rec.MessageID
	m.sched.Arm(key, delay, func() {
		if _, err := m.End(context.Background(), guildID, messageID); err != nil {
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound) {
				// Ended, cancelled or deleted before the timer fired.
				return
			}
			log.Error().Err(err).
				Str("guild_id", guildID).
				Str("message_id", messageID).
				Msg("Giveaway end timer failed")
		}
	})
}

func (m *Manager) armClaim(rec *Record) {
	key := TimerKey{GuildID: rec.GuildID, MessageID: rec.MessageID, Kind: TimerClaim}
	delay := time.Duration(rec.ClaimDeadline-m.now().Unix()) * time.Second
	guildID, messageID := rec.GuildID, rec.MessageID
	m.sched.Arm(key, delay, func() {
		if err := m.expireClaim(context.Background(), guildID, messageID); err != nil {
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound) {
				return
			}
			log.Error().Err(err).
				Str("guild_id", guildID).
				Str("message_id", messageID).
				Msg("Giveaway claim timer failed")
		}
	})
}

// expireClaim handles a lapsed claim window: redraw replacements from the
// remaining pool, or forfeit the giveaway when the pool is empty.
func (m *Manager) expireClaim(ctx context.Context, guildID, messageID string) error {
	forfeited := false
	rec, err := m.store.Update(ctx, guildID, messageID, func(r *Record) error {
		if r.Status != StatusEnded {
			return ErrInvalidState
		}
		if r.AllClaimed() {
			// Claim raced the timer; nothing to redraw.
			return ErrInvalidState
		}
		winners := DrawReplacement(r, m.rng)
		if len(winners) == 0 {
			r.Status = StatusForfeited
			r.ClaimDeadline = 0
			forfeited = true
			return nil
		}
		r.setWinners(winners)
		r.ClaimDeadline = m.now().Unix() + r.ClaimSeconds
		return nil
	})
	if err != nil {
		return err
	}

	if forfeited {
		m.announceUpdated(rec)
		log.Info().
			Str("guild_id", guildID).
			Str("message_id", messageID).
			Msg("Giveaway forfeited: claim window lapsed with no replacement pool")
		return nil
	}

	m.armClaim(rec)
	m.announceUpdated(rec)
	m.announceWinners(rec, true)
	log.Info().
		Str("guild_id", guildID).
		Str("message_id", messageID).
		Int("winners", len(rec.WinnerIDs)).
		Msg("Giveaway claim window lapsed, winners redrawn")
	return nil
}

func (m *Manager) announceUpdated(rec *Record) {
	if m.announcer == nil {
		return
	}
	if err := m.announcer.GiveawayUpdated(rec); err != nil {
		log.Warn().Err(err).
			Str("guild_id", rec.GuildID).
			Str("message_id", rec.MessageID).
			Msg("Failed to update giveaway message")
	}
}

func (m *Manager) announceWinners(rec *Record, rerolled bool) {
	if m.announcer == nil {
		return
	}
	if err := m.announcer.WinnersAnnounced(rec, rerolled); err != nil {
		log.Warn().Err(err).
			Str("guild_id", rec.GuildID).
			Str("message_id", rec.MessageID).
			Msg("Failed to announce giveaway winners")
	}
}
