package leaderboardhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/infrastructure/jwt"
	leaderboardservice "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/application"
)

// FakeService is a programmable leaderboardservice.Service.
type FakeService struct {
	GetLeaderboardFunc        func(ctx context.Context) (*leaderboardservice.LeaderboardView, error)
	GetEpochEndTimeFunc       func(ctx context.Context) (time.Time, error)
	TriggerManualResetFunc    func(ctx context.Context) error
	ExportLeaderboardXLSXFunc func(ctx context.Context) ([]byte, error)
	RenderRewardChartFunc     func(ctx context.Context, n int) ([]byte, error)

	resets int
}

func (f *FakeService) GetLeaderboard(ctx context.Context) (*leaderboardservice.LeaderboardView, error) {
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx)
	}
	return &leaderboardservice.LeaderboardView{}, nil
}

func (f *FakeService) GetEpochEndTime(ctx context.Context) (time.Time, error) {
	if f.GetEpochEndTimeFunc != nil {
		return f.GetEpochEndTimeFunc(ctx)
	}
	return time.Time{}, nil
}

func (f *FakeService) TriggerManualReset(ctx context.Context) error {
	f.resets++
	if f.TriggerManualResetFunc != nil {
		return f.TriggerManualResetFunc(ctx)
	}
	return nil
}

func (f *FakeService) ExportLeaderboardXLSX(ctx context.Context) ([]byte, error) {
	if f.ExportLeaderboardXLSXFunc != nil {
		return f.ExportLeaderboardXLSXFunc(ctx)
	}
	return []byte("PK"), nil
}

func (f *FakeService) RenderRewardChart(ctx context.Context, n int) ([]byte, error) {
	if f.RenderRewardChartFunc != nil {
		return f.RenderRewardChartFunc(ctx, n)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

var _ leaderboardservice.Service = (*FakeService)(nil)

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
