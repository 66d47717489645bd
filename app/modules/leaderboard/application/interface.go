package leaderboardservice

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
)

// Service is the leaderboard surface consumed by the HTTP layer.
type Service interface {
	// GetLeaderboard ranks a fresh snapshot of all users. When the store cannot
	// be read it returns the last successful result (or an empty one) marked stale.
	GetLeaderboard(ctx context.Context) (*LeaderboardView, error)

	// GetEpochEndTime returns when the current epoch ends.
	GetEpochEndTime(ctx context.Context) (time.Time, error)

	// TriggerManualReset resets all stats now and restarts the epoch.
	TriggerManualReset(ctx context.Context) error

	// ExportLeaderboardXLSX renders the current leaderboard as a spreadsheet.
	ExportLeaderboardXLSX(ctx context.Context) ([]byte, error)

	// RenderRewardChart renders a bar chart of the top n users by reward.
	RenderRewardChart(ctx context.Context, n int) ([]byte, error)
}

// Scheduler is the part of ResetScheduler the service depends on.
type Scheduler interface {
	CurrentEndTime(ctx context.Context) (time.Time, error)
	ManualReset(ctx context.Context) error
}

// LeaderboardView is a ranked leaderboard plus the epoch it belongs to.
type LeaderboardView struct {
	Rows     []leaderboarddomain.LeaderboardRow `json:"leaderboard"`
	EpochEnd *time.Time                         `json:"epoch_end,omitempty"`
	Stale    bool                               `json:"stale"`
}
