package userservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	minPasswordLength = 6
	maxFieldLength    = 64
)

// UserService implements the Service interface.
type UserService struct {
	repo      userdb.Repository
	tokens    TokenIssuer
	hasher    PasswordHasher
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.ServiceMetrics
	tracer    trace.Tracer
	db        *bun.DB
	now       func() time.Time
}

// NewUserService creates a new UserService. A nil db runs repository calls
// without a transaction.
func NewUserService(
	repo userdb.Repository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *UserService {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		now:       time.Now,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *UserService,
	ctx context.Context,
	operationName string,
	userID string,
	op operationFunc[T],
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("user_id", userID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, operationName+" triggered",
		slog.String("operation", operationName),
		slog.String("user_id", userID),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("user_id", userID),
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
		s.logger.WarnContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("user_id", userID),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *UserService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

var _ Service = (*UserService)(nil)
