package userservice

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	userdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func validateGame(req RecordGameRequest) error {
	if math.IsNaN(req.Reward) || math.IsInf(req.Reward, 0) {
		return ErrInvalidReward
	}
	if req.Reward < 0 {
		return ErrNegativeReward
	}
	if req.GameType == "" {
		return ErrEmptyGameType
	}
	if len(req.GameType) > maxFieldLength {
		return ErrInvalidInput
	}
	return nil
}

// RecordGame adds reward to the user's cumulative reward, counts the game and
// adds gameType to the set of types played. The row stays locked until the
// update commits.
func (s *UserService) RecordGame(ctx context.Context, userID string, req RecordGameRequest) (*Stats, error) {
	req.GameType = strings.TrimSpace(req.GameType)

	return withTelemetry(s, ctx, "RecordGame", userID, func(ctx context.Context) (*Stats, error) {
		if err := validateGame(req); err != nil {
			return nil, err
		}

		user, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*userdb.User, error) {
			user, err := s.repo.GetUserForUpdate(ctx, db, userID)
			if err != nil {
				if errors.Is(err, userdb.ErrNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, err
			}

			next := userdomain.GameStats{
				GamesPlayed:       user.GamesPlayed,
				DistinctGameTypes: user.DistinctGameTypes,
				CumulativeReward:  user.CumulativeReward,
				GameTypes:         user.GameTypes,
			}.Record(req.Reward, req.GameType)
			if !next.Finite() {
				return nil, ErrInvalidReward
			}

			user.GamesPlayed = next.GamesPlayed
			user.DistinctGameTypes = next.DistinctGameTypes
			user.CumulativeReward = next.CumulativeReward
			user.GameTypes = next.GameTypes

			if err := s.repo.UpdateStats(ctx, db, user); err != nil {
				return nil, err
			}
			return user, nil
		})
		if err != nil {
			return nil, err
		}

		s.publishGameRecorded(ctx, user, req)

		stats := statsOf(user)
		return &stats, nil
	})
}

func (s *UserService) publishGameRecorded(ctx context.Context, user *userdb.User, req RecordGameRequest) {
	if s.publisher == nil {
		return
	}
	payload := userdomain.StatsRecordedPayload{
		UserID:            user.UserID,
		GameType:          req.GameType,
		Reward:            req.Reward,
		GamesPlayed:       user.GamesPlayed,
		DistinctGameTypes: user.DistinctGameTypes,
		CumulativeReward:  user.CumulativeReward,
		RecordedAt:        s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, userdomain.StatsRecordedTopic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish stats recorded event",
			slog.String("user_id", user.UserID),
			slog.Any("error", err),
		)
	}
}

// GetStats returns the user's current-epoch counters.
func (s *UserService) GetStats(ctx context.Context, userID string) (*Stats, error) {
	return withTelemetry(s, ctx, "GetStats", userID, func(ctx context.Context) (*Stats, error) {
		user, err := s.loadUser(ctx, nil, userID)
		if err != nil {
			return nil, err
		}
		stats := statsOf(user)
		return &stats, nil
	})
}
