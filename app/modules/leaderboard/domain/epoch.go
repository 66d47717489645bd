package leaderboarddomain

import "time"

// EpochSingletonKey identifies the single persisted epoch row.
const EpochSingletonKey = "current"

// LeaderboardEpoch is the window between two resets. Only its end matters.
type LeaderboardEpoch struct {
	EndTimeUTC time.Time
}

// NextEpoch starts an epoch at now that ends one interval later.
func NextEpoch(now time.Time, interval time.Duration) LeaderboardEpoch {
	return LeaderboardEpoch{EndTimeUTC: now.UTC().Add(interval)}
}

// Expired reports whether the epoch end is at or before now.
func (e LeaderboardEpoch) Expired(now time.Time) bool {
	return !e.EndTimeUTC.After(now)
}

// Remaining returns the time left until the epoch ends, never negative.
func (e LeaderboardEpoch) Remaining(now time.Time) time.Duration {
	if d := e.EndTimeUTC.Sub(now); d > 0 {
		return d
	}
	return 0
}
