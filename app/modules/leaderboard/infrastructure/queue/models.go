package leaderboardqueue

import "time"

const (
	// QueueName is the River queue reset jobs run on.
	QueueName = "leaderboard"

	resetJobKind = "leaderboard_reset"
)

// ResetJob wakes the reset scheduler at the end of an epoch.
type ResetJob struct {
	EpochEnd time.Time `json:"epoch_end"`
}

// Kind returns the job type identifier for River
func (ResetJob) Kind() string { return resetJobKind }

// JobInfo describes a pending reset job.
type JobInfo struct {
	ID          int64  `json:"id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	Attempt     int    `json:"attempt"`
}
