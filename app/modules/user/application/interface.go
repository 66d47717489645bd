package userservice

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the account and stats operations exposed over HTTP.
type Service interface {
	// Signup creates a non-admin account with zero stats and logs it in.
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	// Login checks credentials and issues a session.
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	// Logout acknowledges a logout. Sessions are stateless tokens.
	Logout(ctx context.Context, userID string) error

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID, username string) (*Profile, error)
	DeleteAccount(ctx context.Context, userID string) error

	// RecordGame adds one finished game to the user's current-epoch stats.
	RecordGame(ctx context.Context, userID string, req RecordGameRequest) (*Stats, error)
	GetStats(ctx context.Context, userID string) (*Stats, error)

	// Admin operations.
	ListUsers(ctx context.Context) ([]UserSummary, error)
	DeleteUser(ctx context.Context, userID string) error
	// EnsureAdmin creates the account if missing and grants admin rights.
	EnsureAdmin(ctx context.Context, userID, password string) error
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	IssueToken(ctx context.Context, subject authservice.Subject) (*authservice.Session, error)
}

// SignupRequest is the body of POST /api/signup.
type SignupRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// RecordGameRequest is the body of POST /api/update-stats.
type RecordGameRequest struct {
	Reward   float64 `json:"reward"`
	GameType string  `json:"game_type"`
}

// Profile is the public view of an account.
type Profile struct {
	UUID     uuid.UUID `json:"uuid"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"is_admin"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User      Profile   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Stats is a user's current-epoch counters.
type Stats struct {
	GamesPlayed       int      `json:"games_played"`
	DistinctGameTypes int      `json:"distinct_game_types"`
	TotalReward       float64  `json:"total_reward"`
	GameTypes         []string `json:"game_types"`
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	Profile
	Stats
	CreatedAt time.Time `json:"created_at"`
}

func profileOf(u *userdb.User) Profile {
	return Profile{
		UUID:     u.UUID,
		UserID:   u.UserID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

func statsOf(u *userdb.User) Stats {
	types := u.GameTypes
	if types == nil {
		types = []string{}
	}
	return Stats{
		GamesPlayed:       u.GamesPlayed,
		DistinctGameTypes: u.DistinctGameTypes,
		TotalReward:       u.CumulativeReward,
		GameTypes:         types,
	}
}
