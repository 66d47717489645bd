package userintegrationtests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
	userdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/gamezone-api/integration_tests/testutils"
	"github.com/Black-And-White-Club/gamezone-api/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SignupAndLogin(t *testing.T) {
	deps := SetupTestUserService(t)
	ctx := deps.Ctx
	gen := seed.NewGenerator(11)

	userID := gen.UserID()
	res, err := deps.Service.Signup(ctx, userservice.SignupRequest{
		UserID:   userID,
		Username: gen.Username(),
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, res.User.UserID)
	assert.NotEmpty(t, res.Token)
	assert.False(t, res.User.IsAdmin)

	stored, err := deps.Repo.GetUserByUserID(ctx, nil, userID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", stored.PasswordHash, "password must be stored hashed")
	assert.Equal(t, []string{}, stored.GameTypes)
	assert.Equal(t, 1, stored.Rank)

	_, err = deps.Service.Signup(ctx, userservice.SignupRequest{UserID: userID, Username: "again", Password: "hunter22"})
	assert.ErrorIs(t, err, userservice.ErrUserExists)

	login, err := deps.Service.Login(ctx, userservice.LoginRequest{UserID: userID, Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	_, err = deps.Service.Login(ctx, userservice.LoginRequest{UserID: userID, Password: "wrong-password"})
	assert.ErrorIs(t, err, userservice.ErrInvalidCredentials)

	_, err = deps.Service.Login(ctx, userservice.LoginRequest{UserID: "nobody", Password: "hunter22"})
	assert.ErrorIs(t, err, userservice.ErrInvalidCredentials)
}

func TestUserService_RecordGamePersistsStats(t *testing.T) {
	deps := SetupTestUserService(t)
	ctx := deps.Ctx

	_, err := deps.Service.Signup(ctx, userservice.SignupRequest{UserID: "player1", Username: "Player One", Password: "secret1"})
	require.NoError(t, err)

	games := []userservice.RecordGameRequest{
		{Reward: 10, GameType: "snake"},
		{Reward: 5.5, GameType: "tetris"},
		{Reward: 0, GameType: "snake"},
	}
	for _, g := range games {
		_, err := deps.Service.RecordGame(ctx, "player1", g)
		require.NoError(t, err)
	}

	stats, err := deps.Service.GetStats(ctx, "player1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.GamesPlayed)
	assert.Equal(t, 2, stats.DistinctGameTypes)
	assert.InDelta(t, 15.5, stats.TotalReward, 1e-9)
	assert.ElementsMatch(t, []string{"snake", "tetris"}, stats.GameTypes)

	_, err = deps.Service.RecordGame(ctx, "ghost", userservice.RecordGameRequest{Reward: 1, GameType: "snake"})
	assert.ErrorIs(t, err, userservice.ErrUserNotFound)
}

func TestUserService_ConcurrentRecordGameDoesNotLoseUpdates(t *testing.T) {
	deps := SetupTestUserService(t)
	ctx := deps.Ctx

	_, err := deps.Service.Signup(ctx, userservice.SignupRequest{UserID: "busy", Username: "Busy", Password: "secret1"})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gameType := seed.GameTypes[i%len(seed.GameTypes)]
			if _, err := deps.Service.RecordGame(ctx, "busy", userservice.RecordGameRequest{Reward: 1, GameType: gameType}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := deps.Service.GetStats(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, workers, stats.GamesPlayed)
	assert.Equal(t, len(seed.GameTypes), stats.DistinctGameTypes)
	assert.InDelta(t, float64(workers), stats.TotalReward, 1e-9)
}

func TestUserService_RecordGamePublishesOverNATS(t *testing.T) {
	deps := SetupTestUserService(t)

	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	capture := testutils.NewMessageCapture()
	require.NoError(t, capture.Capture(ctx, deps.Env.EventBus, userdomain.StatsRecordedTopic))

	_, err := deps.Service.Signup(ctx, userservice.SignupRequest{UserID: "streamer", Username: "Streamer", Password: "secret1"})
	require.NoError(t, err)

	// Core NATS drops messages published before the subscription is live.
	err = testutils.WaitFor(5*time.Second, 100*time.Millisecond, func() error {
		if _, err := deps.Service.RecordGame(ctx, "streamer", userservice.RecordGameRequest{Reward: 3, GameType: "memory"}); err != nil {
			return err
		}
		if len(capture.GetMessages(userdomain.StatsRecordedTopic)) == 0 {
			return errors.New("no message yet")
		}
		return nil
	})
	require.NoError(t, err)

	msgs := capture.GetMessages(userdomain.StatsRecordedTopic)
	payload, err := testutils.ParsePayload[userdomain.StatsRecordedPayload](msgs[0])
	require.NoError(t, err)
	assert.Equal(t, "streamer", payload.UserID)
	assert.Equal(t, "memory", payload.GameType)
	assert.InDelta(t, 3.0, payload.Reward, 1e-9)
	assert.GreaterOrEqual(t, payload.GamesPlayed, 1)
}

func TestUserService_ProfileAndDeletion(t *testing.T) {
	deps := SetupTestUserService(t)
	ctx := deps.Ctx

	_, err := deps.Service.Signup(ctx, userservice.SignupRequest{UserID: "renamer", Username: "Before", Password: "secret1"})
	require.NoError(t, err)

	profile, err := deps.Service.UpdateProfile(ctx, "renamer", "After")
	require.NoError(t, err)
	assert.Equal(t, "After", profile.Username)

	require.NoError(t, deps.Service.DeleteAccount(ctx, "renamer"))

	_, err = deps.Service.GetProfile(ctx, "renamer")
	assert.ErrorIs(t, err, userservice.ErrUserNotFound)

	_, err = deps.Repo.GetUserByUserID(ctx, nil, "renamer")
	assert.ErrorIs(t, err, userdb.ErrNotFound)

	_, err = deps.Service.UpdateProfile(ctx, "renamer", "Ghost")
	assert.ErrorIs(t, err, userservice.ErrUserNotFound)
}

func TestUserService_EnsureAdminAndListUsers(t *testing.T) {
	deps := SetupTestUserService(t)
	ctx := deps.Ctx

	require.NoError(t, deps.Service.EnsureAdmin(ctx, "root", "rootpass"))
	require.NoError(t, deps.Service.EnsureAdmin(ctx, "root", "ignored-second-time"))

	login, err := deps.Service.Login(ctx, userservice.LoginRequest{UserID: "root", Password: "rootpass"})
	require.NoError(t, err)
	assert.True(t, login.User.IsAdmin)

	users := seed.NewGenerator(3).Users(4, 5, "not-a-real-hash")
	require.NoError(t, seed.Insert(ctx, deps.BunDB, users))

	listed, err := deps.Service.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 5)
	assert.Equal(t, "root", listed[0].UserID)

	require.NoError(t, deps.Service.DeleteUser(ctx, users[0].UserID))
	assert.ErrorIs(t, deps.Service.DeleteUser(ctx, users[0].UserID), userservice.ErrUserNotFound)

	listed, err = deps.Service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 4)
}
