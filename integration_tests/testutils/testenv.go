package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/gamezone-api/app"
	leaderboardqueue "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/queue"
	"github.com/Black-And-White-Club/gamezone-api/config"
	"github.com/Black-And-White-Club/gamezone-api/integration_tests/containers"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
	Tracer        trace.Tracer
}

// NewTestEnvironment starts Postgres and NATS containers, migrates the
// schema, including River's, and connects an event bus to NATS.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:        noop.NewTracerProvider().Tracer("integration"),
	}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: dsn},
		NATS:     config.NATSConfig{URL: natsURL},
		JWT:      config.JWTConfig{Secret: "integration-secret", Issuer: "gamezone-api", DefaultTTL: time.Hour},
		Leaderboard: config.LeaderboardConfig{
			ResetInterval:   time.Hour,
			ResetRetryDelay: time.Second,
			AlarmBackend:    config.AlarmBackendRiver,
			ChartTopN:       10,
		},
	}

	db, err := app.OpenDB(ctx, dsn)
	if err != nil {
		return err
	}
	env.DB = db

	if err := app.RunMigrations(ctx, db, env.Logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := runRiverMigrations(ctx, dsn); err != nil {
		return err
	}

	bus, err := eventbus.New(natsURL, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = bus
	return nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()
	return leaderboardqueue.Migrate(ctx, pool)
}

// Reset empties every application table and the River queue.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	return CleanupDatabase(ctx, env.DB)
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}
	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
	env.CancelContext()
}

// WaitFor repeatedly calls check until it returns nil or timeout elapses.
func WaitFor(timeout, interval time.Duration, check func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := check(); err == nil {
				return nil
			}
			return fmt.Errorf("timed out waiting: %w", ctx.Err())
		case <-ticker.C:
			if err := check(); err == nil {
				return nil
			}
		}
	}
}
