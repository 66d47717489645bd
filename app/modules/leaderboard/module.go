package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/gamezone-api/app/modules/auth"
	leaderboardservice "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/handlers"
	leaderboardqueue "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/queue"
	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/config"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	service    leaderboardservice.Service
	scheduler  *leaderboardservice.ResetScheduler
	queue      *leaderboardqueue.Alarm
	logger     *slog.Logger
	runCtx     context.Context
	cancelFunc context.CancelFunc
}

// NewModule wires the leaderboard repository, reset scheduler, service and
// HTTP routes. The scheduler does not start until Run.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	publisher eventbus.Publisher,
	authModule *auth.Module,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "leaderboard"))
	tracer := obs.Tracer
	metrics := obs.Metrics.ForModule("leaderboard")

	logger.InfoContext(ctx, "Initializing leaderboard module",
		slog.String("alarm_backend", cfg.Leaderboard.AlarmBackend),
		slog.Duration("reset_interval", cfg.Leaderboard.ResetInterval),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m := &Module{logger: logger, runCtx: runCtx, cancelFunc: cancel}

	var alarm leaderboardservice.Alarm
	switch cfg.Leaderboard.AlarmBackend {
	case config.AlarmBackendRiver:
		q, err := leaderboardqueue.NewAlarm(ctx, db, logger, cfg.Postgres.DSN, metrics)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create reset queue: %w", err)
		}
		m.queue = q
		alarm = q
	default:
		alarm = leaderboardservice.NewTimerAlarm(runCtx, leaderboardservice.RealClock{})
	}

	repo := leaderboarddb.NewRepository(db)
	m.scheduler = leaderboardservice.NewResetScheduler(
		repo,
		db,
		alarm,
		leaderboardservice.RealClock{},
		publisher,
		logger,
		metrics,
		tracer,
		leaderboardservice.SchedulerConfig{
			Interval:   cfg.Leaderboard.ResetInterval,
			RetryDelay: cfg.Leaderboard.ResetRetryDelay,
		},
	)
	m.service = leaderboardservice.NewLeaderboardService(repo, m.scheduler, logger, metrics, tracer)

	if httpRouter != nil {
		leaderboardhandlers.NewLeaderboardHandlers(m.service, logger, tracer, cfg.Leaderboard.ChartTopN).
			RegisterRoutes(httpRouter, authModule.Authenticator())
	}

	return m, nil
}

// Run starts the reset queue, when configured, and the reset scheduler. Both
// keep running until Close.
func (m *Module) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting leaderboard module")
	if m.queue != nil {
		if err := m.queue.Start(m.runCtx); err != nil {
			return err
		}
	}
	m.scheduler.Start(m.runCtx)
	return nil
}

// Close stops the scheduler and the reset queue.
func (m *Module) Close(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Stopping leaderboard module")
	m.scheduler.Stop()

	var err error
	if m.queue != nil {
		err = m.queue.Shutdown(ctx)
	}
	m.cancelFunc()
	return err
}

// GetService returns the leaderboard service.
func (m *Module) GetService() leaderboardservice.Service {
	return m.service
}

// HealthCheck reports whether the reset queue is reachable. The timer
// backend has nothing to check.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.HealthCheck(ctx)
}
