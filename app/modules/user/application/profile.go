package userservice

import (
	"context"
	"errors"
	"strings"

	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func (s *UserService) loadUser(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	user, err := s.repo.GetUserByUserID(ctx, db, userID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns the public view of userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return withTelemetry(s, ctx, "GetProfile", userID, func(ctx context.Context) (*Profile, error) {
		user, err := s.loadUser(ctx, nil, userID)
		if err != nil {
			return nil, err
		}
		profile := profileOf(user)
		return &profile, nil
	})
}

// UpdateProfile changes the display name of userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username string) (*Profile, error) {
	username = strings.TrimSpace(username)

	return withTelemetry(s, ctx, "UpdateProfile", userID, func(ctx context.Context) (*Profile, error) {
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*Profile, error) {
			if err := s.repo.UpdateUsername(ctx, db, userID, username); err != nil {
				if errors.Is(err, userdb.ErrNoRowsAffected) {
					return nil, ErrUserNotFound
				}
				return nil, err
			}
			user, err := s.loadUser(ctx, db, userID)
			if err != nil {
				return nil, err
			}
			profile := profileOf(user)
			return &profile, nil
		})
	})
}

// DeleteAccount removes the caller's own account.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	_, err := withTelemetry(s, ctx, "DeleteAccount", userID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deleteUser(ctx, userID)
	})
	return err
}

func (s *UserService) deleteUser(ctx context.Context, userID string) error {
	if err := s.repo.DeleteUser(ctx, nil, userID); err != nil {
		if errors.Is(err, userdb.ErrNoRowsAffected) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
