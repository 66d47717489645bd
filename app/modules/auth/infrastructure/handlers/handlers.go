package authhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/gamezone-api/internal/httpjson"
	"go.opentelemetry.io/otel/trace"
)

type claimsKey struct{}

// WithClaims returns a context carrying the authenticated claims.
func WithClaims(ctx context.Context, claims *authdomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireUser.
func ClaimsFromContext(ctx context.Context) (*authdomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authdomain.Claims)
	return claims, ok && claims != nil
}

// Authenticator guards HTTP routes with bearer session tokens.
type Authenticator struct {
	service authservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthenticator creates a new Authenticator instance.
func NewAuthenticator(
	service authservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Authenticator {
	return &Authenticator{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// RequireUser rejects requests without a valid "Authorization: Bearer" token
// and stores the token's claims in the request context.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.tracer.Start(r.Context(), "AuthMiddleware.RequireUser")
		defer span.End()

		token := bearerToken(r)
		claims, err := a.service.ValidateToken(ctx, token)
		if err != nil {
			msg := "unauthorized"
			if errors.Is(err, authjwt.ErrExpiredToken) {
				msg = "session expired"
			}
			httpjson.Error(w, http.StatusUnauthorized, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsAdmin() {
			httpjson.Error(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
