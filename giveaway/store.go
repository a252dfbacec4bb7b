package giveaway

import (
	"context"
	"fmt"
	"sync"
)

// Namespaces inside the per-guild document store.
const (
	NamespaceGiveaways = "giveaways"
	NamespaceDrafts    = "giveaway_drafts"
)

// DocumentStore is the persistence collaborator: a namespaced key-value store
// holding one JSON document per guild per namespace. Get leaves out untouched
// when no document exists yet.
type DocumentStore interface {
	Get(ctx context.Context, guildID, namespace string, out any) error
	Set(ctx context.Context, guildID, namespace string, doc any) error
}

// Store provides CRUD over giveaway records, keyed by message id and scoped
// per guild. Every mutation runs as a read-modify-write cycle under a
// per-guild lock, which also covers the per-record locking requirement since
// a guild's records live in a single document.
type Store struct {
	docs DocumentStore

	mu     sync.Mutex
	guilds map[string]*sync.Mutex
}

// NewStore wraps a document store.
func NewStore(docs DocumentStore) *Store {
	return &Store{
		docs:   docs,
		guilds: make(map[string]*sync.Mutex),
	}
}

func (s *Store) guildLock(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.guilds[guildID]
	if !ok {
		lock = &sync.Mutex{}
		s.guilds[guildID] = lock
	}
	return lock
}

func (s *Store) load(ctx context.Context, guildID string) (map[string]*Record, error) {
	records := make(map[string]*Record)
	if err := s.docs.Get(ctx, guildID, NamespaceGiveaways, &records); err != nil {
		return nil, fmt.Errorf("failed to load giveaways for guild %s: %w", guildID, err)
	}
	for _, rec := range records {
		rec.Normalize()
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, guildID string, records map[string]*Record) error {
	if err := s.docs.Set(ctx, guildID, NamespaceGiveaways, records); err != nil {
		return fmt.Errorf("failed to save giveaways for guild %s: %w", guildID, err)
	}
	return nil
}

// Create inserts a new record. The id comes from the hosting message, which
// the platform guarantees unique, so a duplicate means a caller bug.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	lock := s.guildLock(rec.GuildID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, rec.GuildID)
	if err != nil {
		return err
	}
	if _, exists := records[rec.MessageID]; exists {
		return fmt.Errorf("giveaway %s: %w", rec.MessageID, ErrDuplicateID)
	}
	records[rec.MessageID] = rec.Clone()
	return s.save(ctx, rec.GuildID, records)
}

// Get returns a copy of the record, or ErrNotFound.
func (s *Store) Get(ctx context.Context, guildID, messageID string) (*Record, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	rec, ok := records[messageID]
	if !ok {
		return nil, fmt.Errorf("giveaway %s: %w", messageID, ErrNotFound)
	}
	return rec.Clone(), nil
}

// Update runs mutate against the stored record and persists the result. The
// whole cycle holds the guild lock, so concurrent timer callbacks and command
// handlers serialize cleanly. If mutate returns an error nothing is written.
func (s *Store) Update(ctx context.Context, guildID, messageID string, mutate func(*Record) error) (*Record, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	rec, ok := records[messageID]
	if !ok {
		return nil, fmt.Errorf("giveaway %s: %w", messageID, ErrNotFound)
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}
	if err := s.save(ctx, guildID, records); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// Delete removes a record. Idempotent: deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, guildID, messageID string) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, guildID)
	if err != nil {
		return err
	}
	if _, ok := records[messageID]; !ok {
		return nil
	}
	delete(records, messageID)
	return s.save(ctx, guildID, records)
}

// ListActive returns copies of every active record in the guild.
func (s *Store) ListActive(ctx context.Context, guildID string) ([]*Record, error) {
	records, err := s.List(ctx, guildID)
	if err != nil {
		return nil, err
	}
	active := records[:0]
	for _, rec := range records {
		if rec.Status == StatusActive {
			active = append(active, rec)
		}
	}
	return active, nil
}

// List returns copies of every record in the guild, for recovery scans.
func (s *Store) List(ctx context.Context, guildID string) ([]*Record, error) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	return out, nil
}
