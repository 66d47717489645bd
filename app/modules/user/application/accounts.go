package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	authservice "github.com/Black-And-White-Club/gamezone-api/app/modules/auth/application"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func validateUserID(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if len(userID) > maxFieldLength {
		return ErrUserIDTooLong
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if len(username) > maxFieldLength {
		return ErrUsernameTooLong
	}
	return nil
}

// Signup creates a non-admin account with zero stats and logs it in.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	userID := strings.TrimSpace(req.UserID)
	username := strings.TrimSpace(req.Username)

	return withTelemetry(s, ctx, "Signup", userID, func(ctx context.Context) (*AuthResult, error) {
		if err := validateUserID(userID); err != nil {
			return nil, err
		}
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if len(req.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}

		user := &userdb.User{
			UserID:       userID,
			Username:     username,
			PasswordHash: hash,
			GameTypes:    []string{},
		}
		if err := s.repo.CreateUser(ctx, nil, user); err != nil {
			if errors.Is(err, userdb.ErrDuplicateUser) {
				return nil, ErrUserExists
			}
			return nil, err
		}

		s.logger.InfoContext(ctx, "Account created", slog.String("user_id", userID))
		return s.startSession(ctx, user)
	})
}

// Login checks credentials and issues a session.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	userID := strings.TrimSpace(req.UserID)

	return withTelemetry(s, ctx, "Login", userID, func(ctx context.Context) (*AuthResult, error) {
		if userID == "" || req.Password == "" {
			return nil, ErrInvalidCredentials
		}

		user, err := s.repo.GetUserByUserID(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
			return nil, err
		}

		return s.startSession(ctx, user)
	})
}

func (s *UserService) startSession(ctx context.Context, user *userdb.User) (*AuthResult, error) {
	session, err := s.tokens.IssueToken(ctx, authservice.Subject{
		UserID:   user.UserID,
		UserUUID: user.UUID,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      profileOf(user),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout acknowledges a logout. Tokens expire on their own.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	_, err := withTelemetry(s, ctx, "Logout", userID, func(ctx context.Context) (struct{}, error) {
		s.logger.InfoContext(ctx, "User logged out", slog.String("user_id", userID))
		return struct{}{}, nil
	})
	return err
}

// EnsureAdmin creates userID as an admin if it does not exist, or promotes it.
// An existing account keeps its password.
func (s *UserService) EnsureAdmin(ctx context.Context, userID, password string) error {
	userID = strings.TrimSpace(userID)

	_, err := withTelemetry(s, ctx, "EnsureAdmin", userID, func(ctx context.Context) (struct{}, error) {
		if err := validateUserID(userID); err != nil {
			return struct{}{}, err
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			existing, err := s.repo.GetUserByUserID(ctx, db, userID)
			switch {
			case err == nil:
				if existing.IsAdmin {
					return struct{}{}, nil
				}
				if err := s.repo.SetAdmin(ctx, db, userID, true); err != nil {
					return struct{}{}, err
				}
				s.logger.InfoContext(ctx, "Promoted configured admin", slog.String("user_id", userID))
				return struct{}{}, nil
			case !errors.Is(err, userdb.ErrNotFound):
				return struct{}{}, err
			}

			if len(password) < minPasswordLength {
				return struct{}{}, ErrPasswordTooShort
			}
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return struct{}{}, err
			}
			admin := &userdb.User{
				UserID:       userID,
				Username:     userID,
				PasswordHash: hash,
				IsAdmin:      true,
				GameTypes:    []string{},
			}
			if err := s.repo.CreateUser(ctx, db, admin); err != nil {
				return struct{}{}, fmt.Errorf("failed to create admin: %w", err)
			}
			s.logger.InfoContext(ctx, "Created configured admin", slog.String("user_id", userID))
			return struct{}{}, nil
		})
	})
	return err
}
