package userhandlers

import (
	"context"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
)

// FakeService is a programmable userservice.Service.
type FakeService struct {
	SignupFunc        func(ctx context.Context, req userservice.SignupRequest) (*userservice.AuthResult, error)
	LoginFunc         func(ctx context.Context, req userservice.LoginRequest) (*userservice.AuthResult, error)
	LogoutFunc        func(ctx context.Context, userID string) error
	GetProfileFunc    func(ctx context.Context, userID string) (*userservice.Profile, error)
	UpdateProfileFunc func(ctx context.Context, userID, username string) (*userservice.Profile, error)
	DeleteAccountFunc func(ctx context.Context, userID string) error
	RecordGameFunc    func(ctx context.Context, userID string, req userservice.RecordGameRequest) (*userservice.Stats, error)
	GetStatsFunc      func(ctx context.Context, userID string) (*userservice.Stats, error)
	ListUsersFunc     func(ctx context.Context) ([]userservice.UserSummary, error)
	DeleteUserFunc    func(ctx context.Context, userID string) error
	EnsureAdminFunc   func(ctx context.Context, userID, password string) error

	calls []string
}

func (f *FakeService) record(call string) { f.calls = append(f.calls, call) }

func (f *FakeService) Signup(ctx context.Context, req userservice.SignupRequest) (*userservice.AuthResult, error) {
	f.record("Signup")
	if f.SignupFunc != nil {
		return f.SignupFunc(ctx, req)
	}
	return &userservice.AuthResult{}, nil
}

func (f *FakeService) Login(ctx context.Context, req userservice.LoginRequest) (*userservice.AuthResult, error) {
	f.record("Login")
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, req)
	}
	return &userservice.AuthResult{}, nil
}

func (f *FakeService) Logout(ctx context.Context, userID string) error {
	f.record("Logout")
	if f.LogoutFunc != nil {
		return f.LogoutFunc(ctx, userID)
	}
	return nil
}

func (f *FakeService) GetProfile(ctx context.Context, userID string) (*userservice.Profile, error) {
	f.record("GetProfile")
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx, userID)
	}
	return &userservice.Profile{UserID: userID}, nil
}

func (f *FakeService) UpdateProfile(ctx context.Context, userID, username string) (*userservice.Profile, error) {
	f.record("UpdateProfile")
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(ctx, userID, username)
	}
	return &userservice.Profile{UserID: userID, Username: username}, nil
}

func (f *FakeService) DeleteAccount(ctx context.Context, userID string) error {
	f.record("DeleteAccount")
	if f.DeleteAccountFunc != nil {
		return f.DeleteAccountFunc(ctx, userID)
	}
	return nil
}

func (f *FakeService) RecordGame(ctx context.Context, userID string, req userservice.RecordGameRequest) (*userservice.Stats, error) {
	f.record("RecordGame")
	if f.RecordGameFunc != nil {
		return f.RecordGameFunc(ctx, userID, req)
	}
	return &userservice.Stats{}, nil
}

func (f *FakeService) GetStats(ctx context.Context, userID string) (*userservice.Stats, error) {
	f.record("GetStats")
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, userID)
	}
	return &userservice.Stats{GameTypes: []string{}}, nil
}

func (f *FakeService) ListUsers(ctx context.Context) ([]userservice.UserSummary, error) {
	f.record("ListUsers")
	if f.ListUsersFunc != nil {
		return f.ListUsersFunc(ctx)
	}
	return []userservice.UserSummary{}, nil
}

func (f *FakeService) DeleteUser(ctx context.Context, userID string) error {
	f.record("DeleteUser")
	if f.DeleteUserFunc != nil {
		return f.DeleteUserFunc(ctx, userID)
	}
	return nil
}

func (f *FakeService) EnsureAdmin(ctx context.Context, userID, password string) error {
	f.record("EnsureAdmin")
	if f.EnsureAdminFunc != nil {
		return f.EnsureAdminFunc(ctx, userID, password)
	}
	return nil
}

var _ userservice.Service = (*FakeService)(nil)

// tokenTable is an authservice.Service that accepts a fixed set of tokens.
type tokenTable map[string]*authdomain.Claims

func (t tokenTable) IssueToken(context.Context, authservice.Subject) (*authservice.Session, error) {
	return nil, authjwt.ErrInvalidToken
}

func (t tokenTable) ValidateToken(_ context.Context, token string) (*authdomain.Claims, error) {
	claims, ok := t[token]
	if !ok {
		return nil, authjwt.ErrInvalidToken
	}
	return claims, nil
}

var testTokens = tokenTable{
	"player-token": {UserID: "alice", Role: authdomain.RolePlayer},
	"admin-token":  {UserID: "root", Role: authdomain.RoleAdmin},
}
