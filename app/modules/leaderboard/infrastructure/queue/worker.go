package leaderboardqueue

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// ResetWorker hands a due ResetJob to the alarm that armed it.
type ResetWorker struct {
	river.WorkerDefaults[ResetJob]
	alarm  *Alarm
	logger *slog.Logger
}

// NewResetWorker creates a worker bound to alarm.
func NewResetWorker(alarm *Alarm, logger *slog.Logger) *ResetWorker {
	return &ResetWorker{alarm: alarm, logger: logger}
}

// Work runs the armed callback. Jobs left over from an earlier arm, or from a
// previous process, are acknowledged without firing.
func (w *ResetWorker) Work(ctx context.Context, job *river.Job[ResetJob]) error {
	fire, ok := w.alarm.claim(job.ID)
	if !ok {
		w.logger.InfoContext(ctx, "Ignoring superseded leaderboard reset job",
			slog.Int64("job_id", job.ID),
			slog.Time("epoch_end", job.Args.EpochEnd),
		)
		return nil
	}

	w.logger.InfoContext(ctx, "Leaderboard reset job due",
		slog.Int64("job_id", job.ID),
		slog.Time("epoch_end", job.Args.EpochEnd),
	)
	fire(ctx)
	return nil
}
