package leaderboarddb

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Epoch is the singleton row holding the end of the current leaderboard epoch.
type Epoch struct {
	bun.BaseModel `bun:"table:leaderboard_epochs,alias:le"`

	ID        string    `bun:"id,pk"`
	EndTime   time.Time `bun:"end_time,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row to a domain epoch.
func (e *Epoch) ToDomain() leaderboarddomain.LeaderboardEpoch {
	return leaderboarddomain.LeaderboardEpoch{EndTimeUTC: e.EndTime.UTC()}
}

// UserStats is a read/write view of the stat columns on the users table.
// The table itself is owned by the user module.
type UserStats struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                int64   `bun:"id,pk"`
	UserID            string  `bun:"user_id"`
	Username          string  `bun:"username"`
	GamesPlayed       int     `bun:"games_played"`
	DistinctGameTypes int     `bun:"distinct_game_types"`
	CumulativeReward  float64 `bun:"cumulative_reward"`
	Rank              int     `bun:"rank"`
}

// ToDomain converts the row to a domain stat record.
func (u *UserStats) ToDomain() leaderboarddomain.UserStatRecord {
	return leaderboarddomain.UserStatRecord{
		ID:                      u.UserID,
		DisplayName:             u.Username,
		GamesPlayed:             u.GamesPlayed,
		DistinctGameTypesPlayed: u.DistinctGameTypes,
		CumulativeReward:        u.CumulativeReward,
		Rank:                    u.Rank,
	}
}
