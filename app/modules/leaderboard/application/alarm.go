package leaderboardservice

import (
	"context"
	"sync"
	"time"
)

// FireFunc is invoked when an armed alarm goes off.
type FireFunc func(ctx context.Context)

// Alarm holds at most one pending wake-up. Arming replaces any pending one.
type Alarm interface {
	Arm(ctx context.Context, at time.Time, fire FireFunc) error
	Stop()
}

// TimerAlarm is an in-process Alarm backed by time.AfterFunc.
type TimerAlarm struct {
	baseCtx context.Context
	clock   Clock

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewTimerAlarm creates a TimerAlarm. Fired callbacks receive ctx.
func NewTimerAlarm(ctx context.Context, clock Clock) *TimerAlarm {
	return &TimerAlarm{baseCtx: ctx, clock: clock}
}

// Arm schedules fire at the given instant; a past instant fires immediately.
func (a *TimerAlarm) Arm(_ context.Context, at time.Time, fire FireFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen

	delay := at.Sub(a.clock.Now())
	if delay < 0 {
		delay = 0
	}

	a.timer = time.AfterFunc(delay, func() {
		a.mu.Lock()
		// A timer that already fired cannot be stopped, so a superseded
		// callback must check it is still the current generation.
		current := gen == a.gen
		if current {
			a.timer = nil
		}
		a.mu.Unlock()

		if current && a.baseCtx.Err() == nil {
			fire(a.baseCtx)
		}
	})
	return nil
}

// Stop cancels the pending wake-up, if any.
func (a *TimerAlarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}
