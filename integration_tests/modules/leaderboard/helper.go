package leaderboardintegrationtests

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/application"
	leaderboardqueue "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/queue"
	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/integration_tests/testutils"
	"github.com/Black-And-White-Club/gamezone-api/internal/seed"
	"github.com/uptrace/bun"
)

// Shared environment, created on first use and torn down by TestMain.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx       context.Context
	Repo      leaderboarddb.Repository
	BunDB     *bun.DB
	Env       *testutils.TestEnvironment
	Queue     *leaderboardqueue.Alarm
	Scheduler *leaderboardservice.ResetScheduler
	Service   leaderboardservice.Service
}

// GetTestEnv starts the containers once per package.
func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testEnvOnce.Do(func() {
		log.Println("Initializing leaderboard test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment(t)
	})
	if testEnvErr != nil {
		t.Fatalf("Leaderboard test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// SetupTestLeaderboard resets the schema and wires a repository only. Use
// StartScheduler for the River-backed scheduler and service.
func SetupTestLeaderboard(t *testing.T) TestDeps {
	t.Helper()
	env := GetTestEnv(t)

	resetCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	return TestDeps{
		Ctx:   env.Ctx,
		Repo:  leaderboarddb.NewRepository(env.DB),
		BunDB: env.DB,
		Env:   env,
	}
}

// StartScheduler starts a River queue and a reset scheduler on top of deps,
// like one process of the API would. Both are stopped when the test ends.
func (deps *TestDeps) StartScheduler(t *testing.T, interval time.Duration) {
	t.Helper()
	env := deps.Env

	queue, err := leaderboardqueue.NewAlarm(deps.Ctx, env.DB, env.Logger, env.Config.Postgres.DSN, nil)
	if err != nil {
		t.Fatalf("Failed to create reset queue: %v", err)
	}

	runCtx, cancel := context.WithCancel(deps.Ctx)
	if err := queue.Start(runCtx); err != nil {
		cancel()
		t.Fatalf("Failed to start reset queue: %v", err)
	}

	scheduler := leaderboardservice.NewResetScheduler(
		deps.Repo,
		env.DB,
		queue,
		leaderboardservice.RealClock{},
		env.EventBus,
		env.Logger,
		nil,
		env.Tracer,
		leaderboardservice.SchedulerConfig{Interval: interval, RetryDelay: time.Second},
	)

	t.Cleanup(func() {
		scheduler.Stop()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := queue.Shutdown(stopCtx); err != nil {
			t.Logf("Failed to stop reset queue: %v", err)
		}
		cancel()
	})

	deps.Queue = queue
	deps.Scheduler = scheduler
	deps.Service = leaderboardservice.NewLeaderboardService(deps.Repo, scheduler, env.Logger, nil, env.Tracer)
}

// SeedPlayers inserts count players with up to maxGames games each.
func SeedPlayers(t *testing.T, deps TestDeps, count, maxGames int) {
	t.Helper()
	users := seed.NewGenerator(int64(count*1000+maxGames)).Users(count, maxGames, "not-a-real-hash")
	if err := seed.Insert(deps.Ctx, deps.BunDB, users); err != nil {
		t.Fatalf("Failed to seed players: %v", err)
	}
}
