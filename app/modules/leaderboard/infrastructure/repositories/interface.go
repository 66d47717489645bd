package leaderboarddb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for leaderboard persistence.
// All methods are context-aware for cancellation and timeout propagation.
// A nil db argument uses the repository's own connection; pass a bun.Tx to
// take part in a caller's transaction.
//
// Error semantics:
//   - ErrNotFound: no epoch row exists yet
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// ListAllUsers returns the stat columns of every user in insertion order.
	ListAllUsers(ctx context.Context, db bun.IDB) ([]UserStats, error)

	// BulkZeroStats clears every user's counters and game-type set and sets
	// each rank to 1 in a single UPDATE. It returns the number of rows touched.
	BulkZeroStats(ctx context.Context, db bun.IDB) (int64, error)

	// LoadEpoch returns the singleton epoch row or ErrNotFound.
	LoadEpoch(ctx context.Context, db bun.IDB) (*Epoch, error)

	// UpsertEpoch writes the singleton epoch row.
	UpsertEpoch(ctx context.Context, db bun.IDB, endTime time.Time) error
}
