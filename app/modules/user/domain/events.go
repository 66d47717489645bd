package userdomain

import "time"

// StatsRecordedTopic is published after a game result is stored.
const StatsRecordedTopic = "user.stats.recorded.v1"

// StatsRecordedPayload describes one recorded game.
type StatsRecordedPayload struct {
	UserID            string    `json:"user_id"`
	GameType          string    `json:"game_type"`
	Reward            float64   `json:"reward"`
	GamesPlayed       int       `json:"games_played"`
	DistinctGameTypes int       `json:"distinct_game_types"`
	CumulativeReward  float64   `json:"cumulative_reward"`
	RecordedAt        time.Time `json:"recorded_at"`
}
