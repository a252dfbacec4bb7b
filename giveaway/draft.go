package giveaway

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Draft is a not-yet-launched giveaway being assembled in the interactive
// builder, one per user per guild. It holds the same fields as a record,
// pre-validation, and is discarded on launch or cancel. Session ties builder
// components to the draft generation they were rendered for, so a stale
// builder message cannot mutate a newer draft.
type Draft struct {
	Session         string   `json:"session"`
	Prizes          []string `json:"prizes"`
	Description     string   `json:"description,omitempty"`
	WinnerCount     int      `json:"winner_count"`
	DurationSeconds int64    `json:"duration_seconds"`
	Emoji           string   `json:"emoji"`
	ClaimEnabled    bool     `json:"claim_enabled"`
	ClaimSeconds    int64    `json:"claim_seconds"`
	ChannelID       string   `json:"channel_id,omitempty"`
}

// Options converts the draft into creation options, applying the same
// defaults the builder displays.
func (d *Draft) Options() Options {
	winnerCount := d.WinnerCount
	if winnerCount < MinWinnerCount {
		winnerCount = 1
	}
	return Options{
		Prizes:          d.Prizes,
		Description:     strings.TrimSpace(d.Description),
		WinnerCount:     winnerCount,
		DurationSeconds: d.DurationSeconds,
		Emoji:           d.Emoji,
		ClaimEnabled:    d.ClaimEnabled,
		ClaimSeconds:    d.ClaimSeconds,
	}
}

// DraftStore persists builder drafts in the guild document store, keyed by
// the building user's id.
type DraftStore struct {
	docs DocumentStore

	mu     sync.Mutex
	guilds map[string]*sync.Mutex
}

// NewDraftStore wraps a document store.
func NewDraftStore(docs DocumentStore) *DraftStore {
	return &DraftStore{
		docs:   docs,
		guilds: make(map[string]*sync.Mutex),
	}
}

func (s *DraftStore) guildLock(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.guilds[guildID]
	if !ok {
		lock = &sync.Mutex{}
		s.guilds[guildID] = lock
	}
	return lock
}

func (s *DraftStore) load(ctx context.Context, guildID string) (map[string]*Draft, error) {
	drafts := make(map[string]*Draft)
	if err := s.docs.Get(ctx, guildID, NamespaceDrafts, &drafts); err != nil {
		return nil, fmt.Errorf("failed to load giveaway drafts for guild %s: %w", guildID, err)
	}
	return drafts, nil
}

// Get returns the user's draft, or an empty draft when none exists.
func (s *DraftStore) Get(ctx context.Context, guildID, userID string) (*Draft, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	drafts, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if draft, ok := drafts[userID]; ok {
		return draft, nil
	}
	return &Draft{}, nil
}

// Update runs mutate against the user's draft (creating one if absent) and
// persists the result.
func (s *DraftStore) Update(ctx context.Context, guildID, userID string, mutate func(*Draft)) (*Draft, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	drafts, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	draft, ok := drafts[userID]
	if !ok {
		draft = &Draft{}
		drafts[userID] = draft
	}
	mutate(draft)
	if err := s.docs.Set(ctx, guildID, NamespaceDrafts, drafts); err != nil {
		return nil, fmt.Errorf("failed to save giveaway drafts for guild %s: %w", guildID, err)
	}
	return draft, nil
}

// Clear discards the user's draft. Idempotent.
func (s *DraftStore) Clear(ctx context.Context, guildID, userID string) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	drafts, err := s.load(ctx, guildID)
	if err != nil {
		return err
	}
	if _, ok := drafts[userID]; !ok {
		return nil
	}
	delete(drafts, userID)
	if err := s.docs.Set(ctx, guildID, NamespaceDrafts, drafts); err != nil {
		return fmt.Errorf("failed to save giveaway drafts for guild %s: %w", guildID, err)
	}
	return nil
}
