package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding cumulative_reward index to users...")

		_, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_users_cumulative_reward ON users (cumulative_reward DESC)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Leaderboard index added successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping cumulative_reward index...")

		if _, err := db.NewRaw("DROP INDEX IF EXISTS idx_users_cumulative_reward").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Leaderboard index dropped successfully!")
		return nil
	})
}
