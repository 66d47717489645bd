package leaderboardservice

import "errors"

var (
	// ErrStoreUnavailable means the store could not be reached. Callers may retry.
	ErrStoreUnavailable = errors.New("leaderboard store unavailable")

	// ErrEpochMissing means no epoch has been persisted yet. The scheduler
	// recovers by creating a fresh one.
	ErrEpochMissing = errors.New("leaderboard epoch missing")

	// ErrConcurrentResetInProgress signals that a scheduled reset was skipped
	// because another one is still running. It is not a failure.
	ErrConcurrentResetInProgress = errors.New("leaderboard reset already in progress")

	// ErrPersistenceWriteFailed means the reset transaction did not commit.
	ErrPersistenceWriteFailed = errors.New("leaderboard reset write failed")
)
