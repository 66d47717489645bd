package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard_epochs table...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Epoch)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create leaderboard_epochs table: %w", err)
		}

		fmt.Println("leaderboard_epochs table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard_epochs table...")

		if _, err := db.NewDropTable().Model((*leaderboarddb.Epoch)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop leaderboard_epochs table: %w", err)
		}

		fmt.Println("leaderboard_epochs table dropped successfully!")
		return nil
	})
}
