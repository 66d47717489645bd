package userservice

import (
	"errors"
	"fmt"
)

var (
	// ErrUserExists is returned when signing up with a taken user id.
	ErrUserExists = errors.New("user ID already exists")
	// ErrInvalidCredentials covers both unknown ids and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// ErrInvalidInput is wrapped by every request validation failure.
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyUserID      = fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	ErrUserIDTooLong    = fmt.Errorf("%w: user_id must be at most %d characters", ErrInvalidInput, maxFieldLength)
	ErrEmptyUsername    = fmt.Errorf("%w: username is required", ErrInvalidInput)
	ErrUsernameTooLong  = fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, maxFieldLength)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	ErrEmptyGameType    = fmt.Errorf("%w: game_type is required", ErrInvalidInput)
	ErrNegativeReward   = fmt.Errorf("%w: reward must not be negative", ErrInvalidInput)
	ErrInvalidReward    = fmt.Errorf("%w: reward must be a finite number", ErrInvalidInput)
)
