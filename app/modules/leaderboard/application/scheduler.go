package leaderboardservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultResetInterval   = 24 * time.Hour
	DefaultResetRetryDelay = time.Minute
)

// SchedulerConfig holds the reset cadence.
type SchedulerConfig struct {
	Interval   time.Duration
	RetryDelay time.Duration
}

// ResetScheduler owns the leaderboard epoch. It keeps exactly one wake-up armed
// for the epoch end and, when it fires, zeroes every user's stats and starts
// the next epoch in the same transaction.
//
// Writes are serialized in-process only. Several processes sharing one store
// race on the epoch upsert; the reset itself is idempotent so the race costs a
// duplicate reset at worst.
type ResetScheduler struct {
	repo      leaderboarddb.Repository
	db        *bun.DB
	alarm     Alarm
	clock     Clock
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.ResetMetrics
	tracer    trace.Tracer

	interval   time.Duration
	retryDelay time.Duration

	initMu      sync.Mutex
	initialized bool
	retrying    atomic.Bool

	stateMu sync.RWMutex
	endTime time.Time

	// resetMu guards the zero+upsert write and the re-arm that follows it.
	resetMu  sync.Mutex
	firing   atomic.Bool
	// retryFor is the epoch end a pending retry was armed for. Guarded by resetMu.
	retryFor time.Time
}

// NewResetScheduler creates a scheduler. Call Initialize or Start before use;
// CurrentEndTime and ManualReset initialize lazily.
func NewResetScheduler(
	repo leaderboarddb.Repository,
	db *bun.DB,
	alarm Alarm,
	clock Clock,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics observability.ResetMetrics,
	tracer trace.Tracer,
	cfg SchedulerConfig,
) *ResetScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultResetInterval
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultResetRetryDelay
	}
	if clock == nil {
		clock = RealClock{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ResetScheduler{
		repo:       repo,
		db:         db,
		alarm:      alarm,
		clock:      clock,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		interval:   cfg.Interval,
		retryDelay: cfg.RetryDelay,
	}
}

// Start initializes the scheduler and, if the store is unreachable, keeps
// retrying in the background every RetryDelay until ctx is done.
func (s *ResetScheduler) Start(ctx context.Context) {
	if err := s.Initialize(ctx); err != nil {
		s.logger.WarnContext(ctx, "Leaderboard scheduler initialization failed, will retry",
			slog.Duration("retry_delay", s.retryDelay),
			slog.Any("error", err),
		)
		s.scheduleInitRetry(ctx)
	}
}

// Stop cancels the pending wake-up.
func (s *ResetScheduler) Stop() {
	s.alarm.Stop()
}

// Initialize loads the persisted epoch and arms a wake-up for its end.
//
//   - no epoch: a fresh one ending now+interval is persisted and armed
//   - expired epoch: armed for immediate firing, which resets and starts a new epoch
//   - future epoch: adopted unchanged
//
// Concurrent and repeated calls are safe; only the first successful call acts.
func (s *ResetScheduler) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return nil
	}

	epoch, err := s.loadOrCreateEpoch(ctx)
	if err != nil {
		return err
	}

	s.setEndTime(epoch.EndTimeUTC)
	if err := s.alarm.Arm(ctx, epoch.EndTimeUTC, s.fire); err != nil {
		return fmt.Errorf("%w: arm reset alarm: %w", ErrStoreUnavailable, err)
	}
	s.initialized = true

	s.logger.InfoContext(ctx, "Leaderboard scheduler armed",
		slog.Time("epoch_end", epoch.EndTimeUTC),
		slog.Duration("remaining", epoch.Remaining(s.clock.Now())),
	)
	return nil
}

func (s *ResetScheduler) loadOrCreateEpoch(ctx context.Context) (leaderboarddomain.LeaderboardEpoch, error) {
	now := s.clock.Now()

	row, err := s.repo.LoadEpoch(ctx, nil)
	if err != nil {
		if !errors.Is(err, leaderboarddb.ErrNotFound) {
			return leaderboarddomain.LeaderboardEpoch{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		s.logger.InfoContext(ctx, "No leaderboard epoch found, starting a new one", slog.Any("reason", ErrEpochMissing))
		epoch := leaderboarddomain.NextEpoch(now, s.interval)
		if err := s.repo.UpsertEpoch(ctx, nil, epoch.EndTimeUTC); err != nil {
			return leaderboarddomain.LeaderboardEpoch{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.metrics.SetEpochEnd(epoch.EndTimeUTC)
		return epoch, nil
	}

	epoch := row.ToDomain()
	if epoch.Expired(now) {
		s.logger.WarnContext(ctx, "Leaderboard epoch already ended, resetting now",
			slog.Time("epoch_end", epoch.EndTimeUTC),
			slog.Duration("overdue", now.Sub(epoch.EndTimeUTC)),
		)
	}
	s.metrics.SetEpochEnd(epoch.EndTimeUTC)
	return epoch, nil
}

// scheduleInitRetry retries Initialize every RetryDelay until it succeeds.
func (s *ResetScheduler) scheduleInitRetry(ctx context.Context) {
	if !s.retrying.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.retrying.Store(false)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(s.retryDelay):
			}
			err := s.Initialize(ctx)
			if err == nil {
				return
			}
			s.logger.WarnContext(ctx, "Leaderboard scheduler initialization retry failed", slog.Any("error", err))
		}
	}()
}

// CurrentEndTime returns the live epoch end, initializing first if needed.
func (s *ResetScheduler) CurrentEndTime(ctx context.Context) (time.Time, error) {
	if err := s.Initialize(ctx); err != nil {
		return time.Time{}, err
	}
	return s.loadEndTime(), nil
}

// ManualReset resets the leaderboard now and restarts the epoch, so the next
// automatic reset happens one interval from now.
func (s *ResetScheduler) ManualReset(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	return s.resetAndRearm(ctx, leaderboarddomain.TriggerManual)
}

// fire is the alarm callback for a due epoch.
func (s *ResetScheduler) fire(ctx context.Context) {
	s.runFire(ctx, leaderboarddomain.TriggerScheduled)
}

// fireRetry is the alarm callback for the single retry after a failed reset.
func (s *ResetScheduler) fireRetry(ctx context.Context) {
	s.runFire(ctx, leaderboarddomain.TriggerRetry)
}

func (s *ResetScheduler) runFire(ctx context.Context, trigger leaderboarddomain.ResetTrigger) {
	if !s.firing.CompareAndSwap(false, true) {
		s.logger.InfoContext(ctx, "Skipping leaderboard reset",
			slog.String("trigger", string(trigger)),
			slog.Any("reason", ErrConcurrentResetInProgress),
		)
		return
	}
	defer s.firing.Store(false)

	// Held through the failure path: a manual reset must not land between the
	// failed attempt and arming the retry.
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	if trigger == leaderboarddomain.TriggerRetry && !s.loadEndTime().Equal(s.retryFor) {
		s.logger.InfoContext(ctx, "Skipping stale leaderboard reset retry",
			slog.Time("epoch_end", s.loadEndTime()),
		)
		return
	}

	epoch, err := s.performReset(ctx, trigger)
	if err == nil {
		s.rearmLocked(ctx, epoch.EndTimeUTC)
		return
	}

	if trigger == leaderboarddomain.TriggerScheduled {
		retryAt := s.clock.Now().Add(s.retryDelay)
		s.logger.WarnContext(ctx, "Leaderboard reset failed, retrying once",
			slog.Time("retry_at", retryAt),
			slog.Any("error", err),
		)
		s.retryFor = s.loadEndTime()
		armErr := s.alarm.Arm(ctx, retryAt, s.fireRetry)
		if armErr == nil {
			return
		}
		s.logger.ErrorContext(ctx, "Failed to arm leaderboard reset retry", slog.Any("error", armErr))
	}

	s.deferToNextEpochLocked(ctx, err)
}

// deferToNextEpochLocked gives up on the current reset and arms a fresh future
// epoch so the scheduler never spins on an end time in the past. Callers must
// hold resetMu.
func (s *ResetScheduler) deferToNextEpochLocked(ctx context.Context, cause error) {
	epoch := leaderboarddomain.NextEpoch(s.clock.Now(), s.interval)
	s.logger.ErrorContext(ctx, "Leaderboard reset abandoned, deferring to next epoch",
		slog.Time("next_epoch_end", epoch.EndTimeUTC),
		slog.Any("error", cause),
	)

	if err := s.repo.UpsertEpoch(ctx, nil, epoch.EndTimeUTC); err != nil {
		s.logger.WarnContext(ctx, "Could not persist deferred leaderboard epoch", slog.Any("error", err))
	}
	s.setEndTime(epoch.EndTimeUTC)
	s.metrics.SetEpochEnd(epoch.EndTimeUTC)
	s.rearmLocked(ctx, epoch.EndTimeUTC)
}

// resetAndRearm performs a reset and arms the alarm for the new epoch while
// still holding resetMu, so the armed wake-up always matches the stored epoch.
func (s *ResetScheduler) resetAndRearm(ctx context.Context, trigger leaderboarddomain.ResetTrigger) error {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	epoch, err := s.performReset(ctx, trigger)
	if err != nil {
		return err
	}
	s.rearmLocked(ctx, epoch.EndTimeUTC)
	return nil
}

func (s *ResetScheduler) rearmLocked(ctx context.Context, at time.Time) {
	if err := s.alarm.Arm(ctx, at, s.fire); err != nil {
		s.logger.ErrorContext(ctx, "Failed to arm leaderboard reset alarm, reinitializing",
			slog.Time("epoch_end", at),
			slog.Any("error", err),
		)
		s.initMu.Lock()
		s.initialized = false
		s.initMu.Unlock()
		s.scheduleInitRetry(context.WithoutCancel(ctx))
	}
}

// performReset zeroes every user's stats and writes the next epoch in one
// transaction. Callers must hold resetMu. Repeating it is harmless: zeroing
// zeroed stats changes nothing and the epoch row is an upsert.
func (s *ResetScheduler) performReset(ctx context.Context, trigger leaderboarddomain.ResetTrigger) (leaderboarddomain.LeaderboardEpoch, error) {
	ctx, span := s.tracer.Start(ctx, "leaderboard.PerformReset", trace.WithAttributes(
		attribute.String("trigger", string(trigger)),
	))
	defer span.End()

	now := s.clock.Now()
	epoch := leaderboarddomain.NextEpoch(now, s.interval)

	var usersReset int64
	err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		n, err := s.repo.BulkZeroStats(ctx, db)
		if err != nil {
			return err
		}
		usersReset = n
		return s.repo.UpsertEpoch(ctx, db, epoch.EndTimeUTC)
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrPersistenceWriteFailed, err)
		span.RecordError(wrapped)
		s.metrics.RecordReset(ctx, string(trigger), "failure")
		s.logger.ErrorContext(ctx, "Leaderboard reset failed",
			slog.String("trigger", string(trigger)),
			slog.Any("error", wrapped),
		)
		return leaderboarddomain.LeaderboardEpoch{}, wrapped
	}

	s.setEndTime(epoch.EndTimeUTC)
	s.metrics.RecordReset(ctx, string(trigger), "success")
	s.metrics.SetEpochEnd(epoch.EndTimeUTC)
	s.logger.InfoContext(ctx, "Leaderboard reset completed",
		slog.String("trigger", string(trigger)),
		slog.Int64("users_reset", usersReset),
		slog.Time("next_epoch_end", epoch.EndTimeUTC),
	)

	s.publishReset(ctx, leaderboarddomain.ResetEventPayload{
		Trigger:      trigger,
		ResetAt:      now,
		NextEpochEnd: epoch.EndTimeUTC,
		UsersReset:   usersReset,
	})
	return epoch, nil
}

func (s *ResetScheduler) publishReset(ctx context.Context, payload leaderboarddomain.ResetEventPayload) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, leaderboarddomain.ResetTopic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish leaderboard reset event", slog.Any("error", err))
	}
}

// runInTx runs fn inside a transaction, or directly when no DB is configured.
func (s *ResetScheduler) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

func (s *ResetScheduler) loadEndTime() time.Time {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.endTime
}

func (s *ResetScheduler) setEndTime(t time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.endTime = t
}
