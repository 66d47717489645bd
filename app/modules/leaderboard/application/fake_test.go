package leaderboardservice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type FakeRepository struct {
	mu    sync.Mutex
	trace []string

	ListAllUsersFunc  func(ctx context.Context, db bun.IDB) ([]leaderboarddb.UserStats, error)
	BulkZeroStatsFunc func(ctx context.Context, db bun.IDB) (int64, error)
	LoadEpochFunc     func(ctx context.Context, db bun.IDB) (*leaderboarddb.Epoch, error)
	UpsertEpochFunc   func(ctx context.Context, db bun.IDB, endTime time.Time) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{trace: []string{}}
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRepository) ListAllUsers(ctx context.Context, db bun.IDB) ([]leaderboarddb.UserStats, error) {
	f.record("ListAllUsers")
	if f.ListAllUsersFunc != nil {
		return f.ListAllUsersFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) BulkZeroStats(ctx context.Context, db bun.IDB) (int64, error) {
	f.record("BulkZeroStats")
	if f.BulkZeroStatsFunc != nil {
		return f.BulkZeroStatsFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakeRepository) LoadEpoch(ctx context.Context, db bun.IDB) (*leaderboarddb.Epoch, error) {
	f.record("LoadEpoch")
	if f.LoadEpochFunc != nil {
		return f.LoadEpochFunc(ctx, db)
	}
	return nil, leaderboarddb.ErrNotFound
}

func (f *FakeRepository) UpsertEpoch(ctx context.Context, db bun.IDB, endTime time.Time) error {
	f.record("UpsertEpoch")
	if f.UpsertEpochFunc != nil {
		return f.UpsertEpochFunc(ctx, db, endTime)
	}
	return nil
}

func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) Count(step string) int {
	n := 0
	for _, s := range f.Trace() {
		if s == step {
			n++
		}
	}
	return n
}

var _ leaderboarddb.Repository = (*FakeRepository)(nil)

// memoryStore backs a FakeRepository with an in-memory users table and epoch row.
type memoryStore struct {
	mu     sync.Mutex
	users  []leaderboarddb.UserStats
	epoch  *time.Time
	writes int
}

func (m *memoryStore) wire(f *FakeRepository) *FakeRepository {
	f.ListAllUsersFunc = func(ctx context.Context, db bun.IDB) ([]leaderboarddb.UserStats, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := make([]leaderboarddb.UserStats, len(m.users))
		copy(out, m.users)
		return out, nil
	}
	f.BulkZeroStatsFunc = func(ctx context.Context, db bun.IDB) (int64, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.users {
			m.users[i].GamesPlayed = 0
			m.users[i].DistinctGameTypes = 0
			m.users[i].CumulativeReward = 0
			m.users[i].Rank = 1
		}
		return int64(len(m.users)), nil
	}
	f.LoadEpochFunc = func(ctx context.Context, db bun.IDB) (*leaderboarddb.Epoch, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch == nil {
			return nil, leaderboarddb.ErrNotFound
		}
		return &leaderboarddb.Epoch{ID: "current", EndTime: *m.epoch}, nil
	}
	f.UpsertEpochFunc = func(ctx context.Context, db bun.IDB, endTime time.Time) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		t := endTime
		m.epoch = &t
		m.writes++
		return nil
	}
	return f
}

func (m *memoryStore) Epoch() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch == nil {
		return time.Time{}, false
	}
	return *m.epoch, true
}

// ------------------------
// Fake Alarm
// ------------------------

type FakeAlarm struct {
	mu      sync.Mutex
	at      time.Time
	fire    FireFunc
	armed   bool
	arms    []time.Time
	stopped int

	ArmErr error
}

func (a *FakeAlarm) Arm(_ context.Context, at time.Time, fire FireFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ArmErr != nil {
		return a.ArmErr
	}
	a.at = at
	a.fire = fire
	a.armed = true
	a.arms = append(a.arms, at)
	return nil
}

func (a *FakeAlarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.armed = false
	a.fire = nil
	a.stopped++
}

// Pending reports the armed instant, if any.
func (a *FakeAlarm) Pending() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.at, a.armed
}

// Fire runs the armed callback synchronously, as a real alarm going off would.
func (a *FakeAlarm) Fire(ctx context.Context) bool {
	a.mu.Lock()
	fire := a.fire
	a.armed = false
	a.fire = nil
	a.mu.Unlock()
	if fire == nil {
		return false
	}
	fire(ctx)
	return true
}

func (a *FakeAlarm) ArmCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.arms)
}

var _ Alarm = (*FakeAlarm)(nil)

// ------------------------
// Fake Clock
// ------------------------

type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	afters chan chan time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now, afters: make(chan chan time.Time, 16)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// After hands out a channel that only fires when the test calls Tick.
func (c *FakeClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.afters <- ch
	return ch
}

// Tick waits for the next After call and releases it.
func (c *FakeClock) Tick(timeout time.Duration) bool {
	select {
	case ch := <-c.afters:
		ch <- c.Now()
		return true
	case <-time.After(timeout):
		return false
	}
}

var _ Clock = (*FakeClock)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (p *FakePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *FakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	CurrentEndTimeFunc func(ctx context.Context) (time.Time, error)
	ManualResetFunc    func(ctx context.Context) error
	manualResets       int
}

func (f *FakeScheduler) CurrentEndTime(ctx context.Context) (time.Time, error) {
	if f.CurrentEndTimeFunc != nil {
		return f.CurrentEndTimeFunc(ctx)
	}
	return time.Time{}, nil
}

func (f *FakeScheduler) ManualReset(ctx context.Context) error {
	f.manualResets++
	if f.ManualResetFunc != nil {
		return f.ManualResetFunc(ctx)
	}
	return nil
}

var _ Scheduler = (*FakeScheduler)(nil)

// ------------------------
// Log Hook
// ------------------------

// hookHandler calls OnMessage for every record it handles, letting a test
// step in at a precise point of a scheduler operation.
type hookHandler struct {
	slog.Handler
	OnMessage func(msg string)
}

func newHookHandler(onMessage func(msg string)) hookHandler {
	return hookHandler{Handler: slog.NewTextHandler(io.Discard, nil), OnMessage: onMessage}
}

func (h hookHandler) Handle(_ context.Context, r slog.Record) error {
	h.OnMessage(r.Message)
	return nil
}

func (h hookHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h hookHandler) WithGroup(string) slog.Handler      { return h }
