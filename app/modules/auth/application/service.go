package authservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTokenTTL is how long a login session stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
}

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	return &service{
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
	}
}

// IssueToken mints a session token for an authenticated user.
func (s *service) IssueToken(ctx context.Context, subject Subject) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	if subject.UserID == "" {
		return nil, ErrMissingSubject
	}

	ttl := s.config.DefaultTTL
	claims := &authdomain.Claims{
		UserID:   subject.UserID,
		UserUUID: subject.UserUUID,
		Role:     authdomain.RoleFor(subject.IsAdmin),
	}

	token, err := s.jwtProvider.GenerateToken(claims, ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token",
			slog.Any("error", err),
			slog.String("user_id", subject.UserID),
		)
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Session token issued",
		slog.String("user_id", subject.UserID),
		slog.String("role", claims.Role.String()),
	)

	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}, nil
}

// ValidateToken validates a session token and returns the claims if valid.
func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.ValidateToken")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.WarnContext(ctx, "Token validation failed",
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Token validated successfully",
		slog.String("user_id", claims.UserID),
		slog.String("role", claims.Role.String()),
	)

	return claims, nil
}
