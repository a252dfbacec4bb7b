package giveaway

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

// memDocs is an in-memory DocumentStore with the same contract as the
// Postgres-backed one: Get leaves out untouched when no document exists.
type memDocs struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemDocs() *memDocs {
	return &memDocs{docs: make(map[string][]byte)}
}

func (m *memDocs) key(guildID, namespace string) string {
	return guildID + ":" + namespace
}

func (m *memDocs) Get(ctx context.Context, guildID, namespace string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[m.key(guildID, namespace)]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (m *memDocs) Set(ctx context.Context, guildID, namespace string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[m.key(guildID, namespace)] = raw
	return nil
}

// fakeScheduler records armed timers and lets tests fire them by hand.
type fakeScheduler struct {
	mu    sync.Mutex
	armed map[TimerKey]armedTimer
}

type armedTimer struct {
	delay time.Duration
	fn    func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{armed: make(map[TimerKey]armedTimer)}
}

func (f *fakeScheduler) Arm(key TimerKey, delay time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[key] = armedTimer{delay: delay, fn: fn}
}

func (f *fakeScheduler) Cancel(key TimerKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, key)
}

func (f *fakeScheduler) CancelGiveaway(guildID, messageID string) {
	f.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerEnd})
	f.Cancel(TimerKey{GuildID: guildID, MessageID: messageID, Kind: TimerClaim})
}

func (f *fakeScheduler) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = make(map[TimerKey]armedTimer)
}

func (f *fakeScheduler) isArmed(key TimerKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.armed[key]
	return ok
}

func (f *fakeScheduler) delay(key TimerKey) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed[key].delay
}

// fire runs the timer's callback the way a real expiry would: the handle is
// gone before the callback executes.
func (f *fakeScheduler) fire(key TimerKey) bool {
	f.mu.Lock()
	timer, ok := f.armed[key]
	if ok {
		delete(f.armed, key)
	}
	f.mu.Unlock()
	if !ok {
		return false
	}
	timer.fn()
	return true
}

// fakeAnnouncer records presentation calls.
type fakeAnnouncer struct {
	mu       sync.Mutex
	updated  []*Record
	winners  []*Record
	rerolled []bool
	err      error
}

func (a *fakeAnnouncer) GiveawayUpdated(rec *Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updated = append(a.updated, rec)
	return a.err
}

func (a *fakeAnnouncer) WinnersAnnounced(rec *Record, rerolled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.winners = append(a.winners, rec)
	a.rerolled = append(a.rerolled, rerolled)
	return a.err
}

func (a *fakeAnnouncer) winnerCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.winners)
}

// testClock is a settable clock for the manager's now func.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testHarness struct {
	store     *Store
	sched     *fakeScheduler
	announcer *fakeAnnouncer
	clock     *testClock
	manager   *Manager
}

func newTestHarness() *testHarness {
	store := NewStore(newMemDocs())
	sched := newFakeScheduler()
	announcer := &fakeAnnouncer{}
	clock := newTestClock()
	manager := NewManager(store, sched, announcer)
	manager.now = clock.Now
	manager.rng = rand.New(rand.NewSource(42))
	return &testHarness{
		store:     store,
		sched:     sched,
		announcer: announcer,
		clock:     clock,
		manager:   manager,
	}
}

func testOptions() Options {
	return Options{
		Prizes:          []string{"Nitro"},
		WinnerCount:     1,
		DurationSeconds: 3600,
	}
}

// addEntries appends users directly to the stored record.
func (h *testHarness) addEntries(guildID, messageID string, userIDs ...string) {
	_, err := h.store.Update(context.Background(), guildID, messageID, func(r *Record) error {
		r.Entries = append(r.Entries, userIDs...)
		return nil
	})
	if err != nil {
		panic(err)
	}
}
