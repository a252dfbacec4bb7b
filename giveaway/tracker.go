package giveaway

import (
	"context"
	"errors"
)

// Tracker maintains the entry set of active giveaways in response to react /
// unreact signals. Signals for unknown messages, inactive giveaways or the
// wrong emoji are silently ignored; entries only ever reflect markers
// observed while the bot was running.
type Tracker struct {
	store *Store
}

// NewTracker returns a tracker over the store.
func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store}
}

// MarkEntry records a participant's entry. Returns true when the entry set
// changed. Idempotent: marking twice has the effect of marking once.
func (t *Tracker) MarkEntry(ctx context.Context, guildID, messageID, userID, emoji string) (bool, error) {
	changed := false
	_, err := t.store.Update(ctx, guildID, messageID, func(rec *Record) error {
		if rec.Status != StatusActive || emoji != rec.Emoji || rec.HasEntry(userID) {
			return nil
		}
		rec.Entries = append(rec.Entries, userID)
		changed = true
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return changed, err
}

// UnmarkEntry withdraws a participant's entry. Symmetric with MarkEntry.
func (t *Tracker) UnmarkEntry(ctx context.Context, guildID, messageID, userID, emoji string) (bool, error) {
	changed := false
	_, err := t.store.Update(ctx, guildID, messageID, func(rec *Record) error {
		if rec.Status != StatusActive || emoji != rec.Emoji || !rec.HasEntry(userID) {
			return nil
		}
		entries := make([]string, 0, len(rec.Entries)-1)
		for _, id := range rec.Entries {
			if id != userID {
				entries = append(entries, id)
			}
		}
		rec.Entries = entries
		changed = true
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return changed, err
}
