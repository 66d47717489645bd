package auth

import (
	"context"
	"log/slog"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/gamezone-api/app/observability"
	"github.com/Black-And-White-Club/gamezone-api/config"
)

const (
	// loginRatePerSecond and loginBurst bound signup and login attempts per IP.
	loginRatePerSecond = 5
	loginBurst         = 10
)

// Module represents the unified auth module.
type Module struct {
	service       authservice.Service
	authenticator *authhandlers.Authenticator
	loginLimiter  *authhandlers.IPRateLimiter
	cors          []string
	logger        *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	service := authservice.NewService(
		jwtProvider,
		authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL},
		logger,
		tracer,
	)

	return &Module{
		service:       service,
		authenticator: authhandlers.NewAuthenticator(service, logger, tracer),
		loginLimiter:  authhandlers.NewIPRateLimiter(loginRatePerSecond, loginBurst),
		cors:          cfg.HTTP.AllowedOrigins,
		logger:        logger,
	}
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}

// Authenticator returns the bearer-token middleware.
func (m *Module) Authenticator() *authhandlers.Authenticator {
	return m.authenticator
}

// LoginLimiter returns the per-IP limiter applied to signup and login.
func (m *Module) LoginLimiter() *authhandlers.IPRateLimiter {
	return m.loginLimiter
}

// AllowedOrigins returns the CORS allow list.
func (m *Module) AllowedOrigins() []string {
	return m.cors
}
