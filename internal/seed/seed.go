// Package seed generates fake players with game history for local
// development and integration tests.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	userdomain "github.com/Black-And-White-Club/gamezone-api/app/modules/user/domain"
	userdb "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// GameTypes are the game kinds the portal hosts.
var GameTypes = []string{"snake", "tetris", "memory", "minesweeper", "2048", "sudoku"}

// Generator builds users from a seeded faker so runs are reproducible.
type Generator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewGenerator returns a generator seeded with seed, or the current time when
// none is given.
func NewGenerator(seed ...int64) *Generator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &Generator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() int64 { return g.seed }

// UserID returns a fresh login id.
func (g *Generator) UserID() string {
	return strings.ToLower(g.faker.Username()) + g.faker.Numerify("####")
}

// Username returns a display name.
func (g *Generator) Username() string {
	return g.faker.FirstName() + " " + g.faker.LastName()
}

// Stats plays between zero and maxGames random games.
func (g *Generator) Stats(maxGames int) userdomain.GameStats {
	var stats userdomain.GameStats
	games := g.faker.Number(0, maxGames)
	for i := 0; i < games; i++ {
		gameType := GameTypes[g.faker.Number(0, len(GameTypes)-1)]
		reward := float64(g.faker.Number(0, 500))
		stats = stats.Record(reward, gameType)
	}
	return stats
}

// Users returns count users sharing passwordHash, each with up to maxGames
// games recorded.
func (g *Generator) Users(count, maxGames int, passwordHash string) []*userdb.User {
	users := make([]*userdb.User, count)
	for i := range users {
		stats := g.Stats(maxGames)
		users[i] = &userdb.User{
			UserID:            g.UserID(),
			Username:          g.Username(),
			PasswordHash:      passwordHash,
			GamesPlayed:       stats.GamesPlayed,
			DistinctGameTypes: stats.DistinctGameTypes,
			CumulativeReward:  stats.CumulativeReward,
			GameTypes:         stats.GameTypes,
			Rank:              1,
		}
	}
	return users
}

// Insert stores users through the user repository.
func Insert(ctx context.Context, db bun.IDB, users []*userdb.User) error {
	repo := userdb.NewRepository(db)
	for _, u := range users {
		if err := repo.CreateUser(ctx, db, u); err != nil {
			return fmt.Errorf("failed to insert user %q: %w", u.UserID, err)
		}
	}
	return nil
}
