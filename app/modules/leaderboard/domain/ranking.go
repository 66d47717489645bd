package leaderboarddomain

import (
	"math"
	"sort"
)

// UserStatRecord is a snapshot of one user's play statistics.
type UserStatRecord struct {
	ID                      string
	DisplayName             string
	GamesPlayed             int
	DistinctGameTypesPlayed int
	CumulativeReward        float64
	// Rank is the last persisted rank. It is a cache and is never read by Rank.
	Rank int
}

// IsActive reports whether any counter is above zero. Negative values count as zero.
func (r UserStatRecord) IsActive() bool {
	return r.GamesPlayed > 0 || r.DistinctGameTypesPlayed > 0 || r.reward() > 0
}

// reward is CumulativeReward with negative, NaN and infinite values read as zero.
func (r UserStatRecord) reward() float64 {
	if math.IsNaN(r.CumulativeReward) || math.IsInf(r.CumulativeReward, 0) {
		return 0
	}
	return max(r.CumulativeReward, 0)
}

// LeaderboardRow is one ranked line of the leaderboard view.
type LeaderboardRow struct {
	Rank                    int     `json:"rank"`
	DisplayName             string  `json:"username"`
	GamesPlayed             int     `json:"games_played"`
	DistinctGameTypesPlayed int     `json:"distinct_game_types"`
	CumulativeReward        float64 `json:"total_reward"`
}

// Rank orders records into a leaderboard.
//
// Active records are sorted by cumulative reward, highest first, and receive
// positional ranks 1..n. Equal rewards keep their input order and still get
// consecutive ranks. Inactive records follow in input order and all share rank
// n+1. When no record is active every row gets rank 1.
//
// Rank never fails: negative counters and non-finite rewards are reported as zero.
func Rank(records []UserStatRecord) []LeaderboardRow {
	active := make([]UserStatRecord, 0, len(records))
	inactive := make([]UserStatRecord, 0)
	for _, r := range records {
		if r.IsActive() {
			active = append(active, r)
		} else {
			inactive = append(inactive, r)
		}
	}

	rows := make([]LeaderboardRow, 0, len(records))
	if len(active) == 0 {
		for _, r := range inactive {
			rows = append(rows, toRow(r, 1))
		}
		return rows
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].reward() > active[j].reward()
	})

	for i, r := range active {
		rows = append(rows, toRow(r, i+1))
	}
	inactiveRank := len(active) + 1
	for _, r := range inactive {
		rows = append(rows, toRow(r, inactiveRank))
	}
	return rows
}

func toRow(r UserStatRecord, rank int) LeaderboardRow {
	return LeaderboardRow{
		Rank:                    rank,
		DisplayName:             r.DisplayName,
		GamesPlayed:             max(r.GamesPlayed, 0),
		DistinctGameTypesPlayed: max(r.DistinctGameTypesPlayed, 0),
		CumulativeReward:        r.reward(),
	}
}
