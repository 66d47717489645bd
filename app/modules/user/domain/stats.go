package userdomain

import (
	"math"
	"slices"
)

// GameStats is a user's per-epoch counters.
type GameStats struct {
	GamesPlayed       int
	DistinctGameTypes int
	CumulativeReward  float64
	GameTypes         []string
}

// Record applies one finished game: the reward is added, the game counter
// goes up by one and gameType joins the set of distinct types played.
func (s GameStats) Record(reward float64, gameType string) GameStats {
	types := slices.Clone(s.GameTypes)
	if !slices.Contains(types, gameType) {
		types = append(types, gameType)
	}
	return GameStats{
		GamesPlayed:       s.GamesPlayed + 1,
		DistinctGameTypes: len(types),
		CumulativeReward:  s.CumulativeReward + reward,
		GameTypes:         types,
	}
}

// Finite reports whether the cumulative reward is a finite number. Adding a
// large reward to a large total can overflow to +Inf.
func (s GameStats) Finite() bool {
	return !math.IsInf(s.CumulativeReward, 0) && !math.IsNaN(s.CumulativeReward)
}
