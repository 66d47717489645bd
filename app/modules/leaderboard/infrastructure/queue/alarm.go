package leaderboardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/application"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
)

// Alarm is a durable leaderboardservice.Alarm backed by a River scheduled job.
// The pending wake-up survives restarts as a row in river_job; only the job
// this process armed last is allowed to fire.
type Alarm struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics observability.ServiceMetrics

	mu    sync.Mutex
	jobID int64
	fire  leaderboardservice.FireFunc
}

var _ leaderboardservice.Alarm = (*Alarm)(nil)

// NewAlarm creates the River client and its pgx pool.
func NewAlarm(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics observability.ServiceMetrics) (*Alarm, error) {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	ctxLogger := logger.With(
		slog.String("component", "river_queue"),
		slog.String("queue", QueueName),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_alarm")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_alarm")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_alarm")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_alarm")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Alarm{
		pool:    pool,
		db:      bunDB,
		logger:  ctxLogger,
		metrics: metrics,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewResetWorker(a, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 1},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_alarm")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	a.client = client

	metrics.RecordOperationSuccess(ctx, "initialize_alarm")
	metrics.RecordOperationDuration(ctx, "initialize_alarm", time.Since(start))
	ctxLogger.Info("Leaderboard reset queue initialized")
	return a, nil
}

// Migrate brings the river_job schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	return nil
}

// Start migrates the River schema and starts working jobs.
func (a *Alarm) Start(ctx context.Context) error {
	if err := Migrate(ctx, a.pool); err != nil {
		return err
	}
	if err := a.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	a.logger.Info("Leaderboard reset queue started")
	return nil
}

// Shutdown stops the River client and closes its pool.
func (a *Alarm) Shutdown(ctx context.Context) error {
	defer a.pool.Close()
	if err := a.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	a.logger.Info("Leaderboard reset queue stopped")
	return nil
}

// Arm cancels any pending reset job and schedules a new one at the given
// instant. A past instant runs as soon as a worker is free.
func (a *Alarm) Arm(ctx context.Context, at time.Time, fire leaderboardservice.FireFunc) error {
	start := time.Now()
	a.metrics.RecordOperationAttempt(ctx, "arm_reset")

	a.mu.Lock()
	defer a.mu.Unlock()

	cancelled, err := a.cancelPending(ctx)
	if err != nil {
		a.metrics.RecordOperationFailure(ctx, "arm_reset")
		return err
	}

	res, err := a.client.Insert(ctx, ResetJob{EpochEnd: at.UTC()}, &river.InsertOpts{
		Queue:       QueueName,
		ScheduledAt: at,
	})
	if err != nil {
		a.metrics.RecordOperationFailure(ctx, "arm_reset")
		return fmt.Errorf("failed to schedule reset job: %w", err)
	}

	a.jobID = res.Job.ID
	a.fire = fire

	a.metrics.RecordOperationSuccess(ctx, "arm_reset")
	a.metrics.RecordOperationDuration(ctx, "arm_reset", time.Since(start))
	a.logger.InfoContext(ctx, "Leaderboard reset job scheduled",
		slog.Int64("job_id", res.Job.ID),
		slog.Time("scheduled_at", at),
		slog.Int("cancelled", cancelled),
	)
	return nil
}

// Stop detaches this process from the pending job. The job row is kept so the
// next process to initialize can adopt the deadline.
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jobID = 0
	a.fire = nil
}

// claim returns the armed callback if jobID is the job this alarm armed last,
// and disarms it so a redelivered job cannot fire twice.
func (a *Alarm) claim(jobID int64) (leaderboardservice.FireFunc, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fire == nil || a.jobID != jobID {
		return nil, false
	}
	fire := a.fire
	a.jobID = 0
	a.fire = nil
	return fire, true
}

type riverJobRow struct {
	ID          int64      `bun:"id"`
	State       string     `bun:"state"`
	ScheduledAt *time.Time `bun:"scheduled_at"`
	Attempt     int16      `bun:"attempt"`
}

func (a *Alarm) cancelPending(ctx context.Context) (int, error) {
	var jobs []riverJobRow
	err := a.db.NewSelect().
		Table("river_job").
		Column("id", "state", "scheduled_at", "attempt").
		Where("kind = ?", resetJobKind).
		Where("state IN (?, ?, ?)", "available", "scheduled", "retryable").
		Scan(ctx, &jobs)
	if err != nil {
		return 0, fmt.Errorf("failed to query pending reset jobs: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := a.client.JobCancel(ctx, job.ID); err != nil {
			a.logger.WarnContext(ctx, "Failed to cancel reset job",
				slog.Int64("job_id", job.ID),
				slog.Any("error", err),
			)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// PendingJobs lists reset jobs that have not run yet.
func (a *Alarm) PendingJobs(ctx context.Context) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := a.db.NewSelect().
		Table("river_job").
		Column("id", "state", "scheduled_at", "attempt").
		Where("kind = ?", resetJobKind).
		Where("state IN (?, ?, ?)", "available", "scheduled", "retryable").
		Order("scheduled_at ASC NULLS LAST").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending reset jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.UTC().Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:          job.ID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			Attempt:     int(job.Attempt),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue table is reachable.
func (a *Alarm) HealthCheck(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	if err := a.db.NewSelect().Table("river_job").ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}
