package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/gamezone-api/app/modules/auth"
	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
	userhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/handlers"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/config"
	"github.com/Black-And-White-Club/gamezone-api/internal/eventbus"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the user module.
type Module struct {
	service  userservice.Service
	handlers *userhandlers.UserHandlers
	logger   *slog.Logger
}

// NewModule wires the user repository, service and HTTP routes. When an admin
// account is configured it is created or promoted before routes are served.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	publisher eventbus.Publisher,
	authModule *auth.Module,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "user"))
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing user module")

	repo := userdb.NewRepository(db)
	service := userservice.NewUserService(
		repo,
		authModule.GetService(),
		userservice.NewBcryptHasher(),
		publisher,
		logger,
		obs.Metrics.ForModule("user"),
		tracer,
		db,
	)

	if cfg.Admin.Enabled() {
		if err := service.EnsureAdmin(ctx, cfg.Admin.UserID, cfg.Admin.Password); err != nil {
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	handlers := userhandlers.NewUserHandlers(service, logger, tracer)
	if httpRouter != nil {
		handlers.RegisterRoutes(httpRouter, authModule.Authenticator(), authModule.LoginLimiter())
	}

	return &Module{
		service:  service,
		handlers: handlers,
		logger:   logger,
	}, nil
}

// GetService returns the user service.
func (m *Module) GetService() userservice.Service {
	return m.service
}
