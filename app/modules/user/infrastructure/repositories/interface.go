package userdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the persistence contract for user data.
//
// Error semantics:
//   - ErrNotFound: requested record does not exist (Get* methods)
//   - ErrNoRowsAffected: UPDATE/DELETE matched no rows
//   - ErrDuplicateUser: insert collided with an existing user_id
//   - other errors: infrastructure failures
type Repository interface {
	CreateUser(ctx context.Context, db bun.IDB, user *User) error
	GetUserByUserID(ctx context.Context, db bun.IDB, userID string) (*User, error)
	// GetUserForUpdate locks the row until the surrounding transaction ends.
	GetUserForUpdate(ctx context.Context, db bun.IDB, userID string) (*User, error)
	ListUsers(ctx context.Context, db bun.IDB) ([]*User, error)
	UpdateUsername(ctx context.Context, db bun.IDB, userID, username string) error
	UpdateStats(ctx context.Context, db bun.IDB, user *User) error
	SetAdmin(ctx context.Context, db bun.IDB, userID string, isAdmin bool) error
	DeleteUser(ctx context.Context, db bun.IDB, userID string) error
}
