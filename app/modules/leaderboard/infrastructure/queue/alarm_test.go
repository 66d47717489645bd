package leaderboardqueue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetJob_Kind(t *testing.T) {
	assert.Equal(t, "leaderboard_reset", ResetJob{}.Kind())
}

func TestAlarm_Claim(t *testing.T) {
	tests := []struct {
		name    string
		armedID int64
		armed   bool
		jobID   int64
		want    bool
	}{
		{name: "current job fires", armedID: 7, armed: true, jobID: 7, want: true},
		{name: "superseded job is ignored", armedID: 8, armed: true, jobID: 7, want: false},
		{name: "nothing armed", armedID: 0, armed: false, jobID: 7, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Alarm{jobID: tt.armedID}
			if tt.armed {
				a.fire = func(context.Context) {}
			}

			fire, ok := a.claim(tt.jobID)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.want, fire != nil)

			if ok {
				_, again := a.claim(tt.jobID)
				assert.False(t, again, "a claimed job must not fire twice")
			}
		})
	}
}

func TestAlarm_StopDetaches(t *testing.T) {
	a := &Alarm{jobID: 3, fire: func(context.Context) {}}
	a.Stop()

	_, ok := a.claim(3)
	assert.False(t, ok)
}

func TestResetWorker_Work(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fired := 0
	a := &Alarm{jobID: 11, fire: func(context.Context) { fired++ }}
	w := NewResetWorker(a, logger)

	job := func(id int64) *river.Job[ResetJob] {
		return &river.Job[ResetJob]{
			JobRow: &rivertype.JobRow{ID: id},
			Args:   ResetJob{EpochEnd: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		}
	}

	require.NoError(t, w.Work(context.Background(), job(10)))
	assert.Zero(t, fired)

	require.NoError(t, w.Work(context.Background(), job(11)))
	assert.Equal(t, 1, fired)

	require.NoError(t, w.Work(context.Background(), job(11)))
	assert.Equal(t, 1, fired)
}
