package giveaway

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TimerKind distinguishes the two one-shot timers a giveaway can own.
type TimerKind string

const (
	TimerEnd   TimerKind = "end"
	TimerClaim TimerKind = "claim"
)

// TimerKey identifies one outstanding timer.
type TimerKey struct {
	GuildID   string
	MessageID string
	Kind      TimerKind
}

// Scheduler arms and cancels one-shot deferred actions. At most one timer per
// key is outstanding at a time: Arm always cancels any existing timer for the
// key first.
type Scheduler interface {
	Arm(key TimerKey, delay time.Duration, fn func())
	Cancel(key TimerKey)
	// CancelGiveaway cancels both timers of one giveaway.
	CancelGiveaway(guildID, messageID string)
	// Stop cancels every outstanding timer. Used on shutdown; restart
	// recovery re-arms from the store, not from in-memory state.
	Stop()
}

// timerScheduler keeps live timer handles in memory, indexed by key.
type timerScheduler struct {
	mu     sync.Mutex
	timers map[TimerKey]*time.Timer
}

// NewScheduler returns a Scheduler backed by runtime timers.
func NewScheduler() Scheduler {
	return &timerScheduler{timers: make(map[TimerKey]*time.Timer)}
}

func (s *timerScheduler) Arm(key TimerKey, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.Stop()
		delete(s.timers, key)
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current, ok := s.timers[key]
		if !ok || current != timer {
			// Cancelled or re-armed after this fire was already scheduled.
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		defer func() {
			// A panicking callback must not take down the timer goroutine
			// pool or block other giveaways' timers.
			if r := recover(); r != nil {
				log.Error().
					Str("guild_id", key.GuildID).
					Str("message_id", key.MessageID).
					Str("kind", string(key.Kind)).
					Interface("panic", r).
					Msg("Giveaway timer callback panicked")
			}
		}()
		fn()
	})
	s.timers[key] = timer
}

func (s *timerScheduler) Cancel(key TimerKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *timerScheduler) CancelGiveaway(guildID, messageID string) {
	s.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerEnd})
	s.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerClaim})
}

func (s *timerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
