package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo      leaderboarddb.Repository
	scheduler Scheduler
	logger    *slog.Logger
	metrics   observability.ServiceMetrics
	tracer    trace.Tracer

	cacheMu   sync.RWMutex
	lastKnown []leaderboarddomain.LeaderboardRow
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	scheduler Scheduler,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *LeaderboardService {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &LeaderboardService{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *LeaderboardService,
	ctx context.Context,
	operationName string,
	op operationFunc[T],
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, operationName+" triggered", slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// GetLeaderboard ranks all users. Store failures never surface: the last
// known leaderboard, or an empty one, is returned flagged as stale.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) (*LeaderboardView, error) {
	return withTelemetry(s, ctx, "GetLeaderboard", func(ctx context.Context) (*LeaderboardView, error) {
		view := &LeaderboardView{}
		if end, err := s.scheduler.CurrentEndTime(ctx); err == nil {
			view.EpochEnd = &end
		} else {
			s.logger.WarnContext(ctx, "Epoch end unavailable for leaderboard read", slog.Any("error", err))
		}

		rows, err := s.rankedRows(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Serving stale leaderboard",
				slog.Any("error", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)),
			)
			view.Rows = s.cachedRows()
			view.Stale = true
			return view, nil
		}

		s.cacheMu.Lock()
		s.lastKnown = rows
		s.cacheMu.Unlock()

		view.Rows = rows
		return view, nil
	})
}

func (s *LeaderboardService) rankedRows(ctx context.Context) ([]leaderboarddomain.LeaderboardRow, error) {
	users, err := s.repo.ListAllUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	records := make([]leaderboarddomain.UserStatRecord, len(users))
	for i := range users {
		records[i] = users[i].ToDomain()
	}
	return leaderboarddomain.Rank(records), nil
}

func (s *LeaderboardService) cachedRows() []leaderboarddomain.LeaderboardRow {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]leaderboarddomain.LeaderboardRow, len(s.lastKnown))
	copy(out, s.lastKnown)
	return out
}

// GetEpochEndTime returns the end of the current epoch.
func (s *LeaderboardService) GetEpochEndTime(ctx context.Context) (time.Time, error) {
	return withTelemetry(s, ctx, "GetEpochEndTime", func(ctx context.Context) (time.Time, error) {
		return s.scheduler.CurrentEndTime(ctx)
	})
}

// TriggerManualReset resets the leaderboard and restarts the epoch.
func (s *LeaderboardService) TriggerManualReset(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "TriggerManualReset", func(ctx context.Context) (struct{}, error) {
		if err := s.scheduler.ManualReset(ctx); err != nil {
			return struct{}{}, err
		}
		s.cacheMu.Lock()
		s.lastKnown = nil
		s.cacheMu.Unlock()
		return struct{}{}, nil
	})
	return err
}

// ExportLeaderboardXLSX renders the live leaderboard as an XLSX workbook.
func (s *LeaderboardService) ExportLeaderboardXLSX(ctx context.Context) ([]byte, error) {
	return withTelemetry(s, ctx, "ExportLeaderboardXLSX", func(ctx context.Context) ([]byte, error) {
		rows, err := s.rankedRows(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		var epochEnd time.Time
		if end, err := s.scheduler.CurrentEndTime(ctx); err == nil {
			epochEnd = end
		}
		return BuildLeaderboardWorkbook(rows, epochEnd)
	})
}

// RenderRewardChart renders the top n users by cumulative reward as a PNG.
func (s *LeaderboardService) RenderRewardChart(ctx context.Context, n int) ([]byte, error) {
	return withTelemetry(s, ctx, "RenderRewardChart", func(ctx context.Context) ([]byte, error) {
		rows, err := s.rankedRows(ctx)
		if err != nil {
			rows = s.cachedRows()
		}
		return GenerateRewardChart(rows, n, DefaultChartPalette)
	})
}

var _ Service = (*LeaderboardService)(nil)
