package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	"github.com/google/uuid"
)

// Service defines the authentication service interface.
type Service interface {
	// IssueToken mints a session token for an authenticated user.
	IssueToken(ctx context.Context, subject Subject) (*Session, error)

	// ValidateToken validates a session token and returns the claims if valid.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// Subject identifies the user a session is issued for.
type Subject struct {
	UserID   string
	UserUUID uuid.UUID
	IsAdmin  bool
}

// Session is an issued bearer token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
