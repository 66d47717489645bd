package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
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

// ListAllUsers returns every user's stat columns ordered by insertion.
func (r *Impl) ListAllUsers(ctx context.Context, db bun.IDB) ([]UserStats, error) {
	db = r.resolveDB(db)
	var users []UserStats
	err := db.NewSelect().
		Model(&users).
		Column("id", "user_id", "username", "games_played", "distinct_game_types", "cumulative_reward", "rank").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListAllUsers: %w", err)
	}
	return users, nil
}

// BulkZeroStats resets all stat columns in one statement.
func (r *Impl) BulkZeroStats(ctx context.Context, db bun.IDB) (int64, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*UserStats)(nil)).
		Set("games_played = 0").
		Set("distinct_game_types = 0").
		Set("cumulative_reward = 0").
		Set("game_types = '{}'").
		Set("rank = 1").
		Where("TRUE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.BulkZeroStats: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.BulkZeroStats: rows affected: %w", err)
	}
	return rows, nil
}

// LoadEpoch loads the singleton epoch.
func (r *Impl) LoadEpoch(ctx context.Context, db bun.IDB) (*Epoch, error) {
	db = r.resolveDB(db)
	epoch := new(Epoch)
	err := db.NewSelect().
		Model(epoch).
		Where("id = ?", leaderboarddomain.EpochSingletonKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.LoadEpoch: %w", err)
	}
	return epoch, nil
}

// UpsertEpoch replaces the singleton epoch end time.
func (r *Impl) UpsertEpoch(ctx context.Context, db bun.IDB, endTime time.Time) error {
	db = r.resolveDB(db)
	epoch := &Epoch{
		ID:        leaderboarddomain.EpochSingletonKey,
		EndTime:   endTime.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(epoch).
		On("CONFLICT (id) DO UPDATE").
		Set("end_time = EXCLUDED.end_time").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.UpsertEpoch: %w", err)
	}
	return nil
}
