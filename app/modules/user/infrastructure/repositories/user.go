package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new user repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}

// CreateUser inserts a new user and fills in generated columns.
func (r *Impl) CreateUser(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	if user.GameTypes == nil {
		user.GameTypes = []string{}
	}
	_, err := db.NewInsert().
		Model(user).
		ExcludeColumn("id", "uuid", "created_at", "updated_at").
		Returning("id, uuid, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("userdb.CreateUser: %w", err)
	}
	return nil
}

// GetUserByUserID retrieves a user by login id.
func (r *Impl) GetUserByUserID(ctx context.Context, db bun.IDB, userID string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("u.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUserByUserID: %w", err)
	}
	return user, nil
}

// GetUserForUpdate retrieves a user with SELECT ... FOR UPDATE.
func (r *Impl) GetUserForUpdate(ctx context.Context, db bun.IDB, userID string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("u.user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUserForUpdate: %w", err)
	}
	return user, nil
}

// ListUsers returns all users in signup order.
func (r *Impl) ListUsers(ctx context.Context, db bun.IDB) ([]*User, error) {
	db = r.resolveDB(db)
	var users []*User
	err := db.NewSelect().
		Model(&users).
		Order("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.ListUsers: %w", err)
	}
	return users, nil
}

// UpdateUsername changes a user's display name.
func (r *Impl) UpdateUsername(ctx context.Context, db bun.IDB, userID, username string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("username = ?", username).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.UpdateUsername: %w", err)
	}
	return requireRows(res, "userdb.UpdateUsername")
}

// UpdateStats writes the stat columns of user.
func (r *Impl) UpdateStats(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	user.UpdatedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(user).
		Column("games_played", "distinct_game_types", "cumulative_reward", "game_types", "updated_at").
		Where("user_id = ?", user.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.UpdateStats: %w", err)
	}
	return requireRows(res, "userdb.UpdateStats")
}

// SetAdmin grants or revokes admin rights.
func (r *Impl) SetAdmin(ctx context.Context, db bun.IDB, userID string, isAdmin bool) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("is_admin = ?", isAdmin).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetAdmin: %w", err)
	}
	return requireRows(res, "userdb.SetAdmin")
}

// DeleteUser removes a user.
func (r *Impl) DeleteUser(ctx context.Context, db bun.IDB, userID string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*User)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.DeleteUser: %w", err)
	}
	return requireRows(res, "userdb.DeleteUser")
}

func requireRows(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
