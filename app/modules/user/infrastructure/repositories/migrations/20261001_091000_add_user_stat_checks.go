package usermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding non-negative stat checks to users...")

		_, err := db.ExecContext(ctx, `
			ALTER TABLE users
				ADD CONSTRAINT users_games_played_nonneg CHECK (games_played >= 0),
				ADD CONSTRAINT users_distinct_game_types_nonneg CHECK (distinct_game_types >= 0);
		`)
		if err != nil {
			return fmt.Errorf("failed to add stat checks: %w", err)
		}

		fmt.Println("User stat checks added successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping user stat checks...")

		_, err := db.ExecContext(ctx, `
			ALTER TABLE users
				DROP CONSTRAINT IF EXISTS users_games_played_nonneg,
				DROP CONSTRAINT IF EXISTS users_distinct_game_types_nonneg;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop stat checks: %w", err)
		}

		fmt.Println("User stat checks dropped successfully!")
		return nil
	})
}
