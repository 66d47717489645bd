package leaderboarddomain

import "time"

// ResetTopic carries a ResetEventPayload after every committed reset.
const ResetTopic = "leaderboard.reset.v1"

// ResetTrigger names what caused a reset.
type ResetTrigger string

const (
	TriggerScheduled ResetTrigger = "scheduled"
	TriggerRetry     ResetTrigger = "retry"
	TriggerManual    ResetTrigger = "manual"
)

// ResetEventPayload is published after a reset commits.
type ResetEventPayload struct {
	Trigger      ResetTrigger `json:"trigger"`
	ResetAt      time.Time    `json:"reset_at"`
	NextEpochEnd time.Time    `json:"next_epoch_end"`
	UsersReset   int64        `json:"users_reset"`
}
