package userdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an account plus its per-epoch game stats.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"-"`
	UUID         uuid.UUID `bun:"uuid,type:uuid,unique,notnull,default:gen_random_uuid()" json:"uuid"`
	UserID       string    `bun:"user_id,unique,notnull" json:"user_id"`
	Username     string    `bun:"username,notnull" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	IsAdmin      bool      `bun:"is_admin,notnull,default:false" json:"is_admin"`

	GamesPlayed       int      `bun:"games_played,notnull,default:0" json:"games_played"`
	DistinctGameTypes int      `bun:"distinct_game_types,notnull,default:0" json:"distinct_game_types"`
	CumulativeReward  float64  `bun:"cumulative_reward,notnull,default:0" json:"total_reward"`
	GameTypes         []string `bun:"game_types,array,notnull,default:'{}'" json:"game_types"`
	// Rank is only written by a leaderboard reset; reads recompute it.
	Rank int `bun:"rank,notnull,default:1" json:"-"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
