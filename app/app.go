package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/gamezone-api/app/modules/auth"
	"github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard"
	leaderboardmigrations "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/gamezone-api/app/modules/user"
	usermigrations "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/config"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// App holds the process-wide dependencies and the feature modules.
type App struct {
	Config   *config.Config
	Obs      observability.Observability
	DB       *bun.DB
	EventBus *eventbus.EventBus
	Router   chi.Router
	Modules  *Modules
}

// Modules groups the feature modules.
type Modules struct {
	Auth        *auth.Module
	User        *user.Module
	Leaderboard *leaderboard.Module
}

// NewApp connects to Postgres, applies migrations and wires every module onto
// a single HTTP router.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(cfg.Observability)
	logger := obs.Logger

	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	bus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	app := &App{
		Config:   cfg,
		Obs:      obs,
		DB:       db,
		EventBus: bus,
	}

	if err := app.initializeModules(ctx); err != nil {
		_ = bus.Close()
		db.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "Application initialized",
		slog.String("http_address", cfg.HTTP.Address),
		slog.String("environment", cfg.Observability.Environment),
	)
	return app, nil
}

func (app *App) initializeModules(ctx context.Context) error {
	authModule := auth.NewModule(ctx, app.Config, app.Obs)
	app.Router = newRouter(authModule.AllowedOrigins())

	userModule, err := user.NewModule(ctx, app.Config, app.Obs, app.DB, app.EventBus, authModule, app.Router)
	if err != nil {
		return fmt.Errorf("failed to initialize user module: %w", err)
	}

	leaderboardModule, err := leaderboard.NewModule(ctx, app.Config, app.Obs, app.DB, app.EventBus, authModule, app.Router)
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	app.Modules = &Modules{
		Auth:        authModule,
		User:        userModule,
		Leaderboard: leaderboardModule,
	}
	app.mountHealth()
	app.mountStatic()
	return nil
}

// OpenDB opens a bun database on the pgdriver connector and checks it is reachable.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// RunMigrations applies user migrations before leaderboard migrations, since
// the leaderboard indexes the users table.
func RunMigrations(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	modules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"user", usermigrations.Migrations},
		{"leaderboard", leaderboardmigrations.Migrations},
	}

	for _, m := range modules {
		migrator := migrate.NewMigrator(db, m.migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", m.name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module",
			slog.String("module", m.name),
			slog.String("group", group.String()),
		)
	}
	return nil
}

// Close stops the leaderboard scheduler and releases the event bus and database.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.Modules != nil && app.Modules.Leaderboard != nil {
		if err := app.Modules.Leaderboard.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("leaderboard: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
