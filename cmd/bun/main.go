package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/gamezone-api/app"
	leaderboardqueue "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/queue"
	userservice "github.com/Black-And-White-Club/gamezone-api/app/modules/user/application"
	"github.com/Black-And-White-Club/gamezone-api/config"
	"github.com/Black-And-White-Club/gamezone-api/internal/seed"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	leaderboardmigrations "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/gamezone-api/app/modules/user/infrastructure/repositories/migrations"
)

type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	// Load configuration for database connection ONLY
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := app.OpenDB(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Users first: leaderboard migrations index the users table.
	migrators := []moduleMigrator{
		{"user", migrate.NewMigrator(db, usermigrations.Migrations)},
		{"leaderboard", migrate.NewMigrator(db, leaderboardmigrations.Migrations)},
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators),
			newRiverCommand(cfg.Postgres.DSN),
			newSeedCommand(cfg, db),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, bool) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, true
		}
	}
	return nil, false
}

func newMultiModuleDBCommand(migrators []moduleMigrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						fmt.Printf("Running migrations for module: %s\n", m.name)
						group, err := m.migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					// Reverse order so leaderboard objects go before the users table.
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						fmt.Printf("Rolling back migrations for module: %s\n", m.name)
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: func(c *cli.Context) error {
					moduleName := c.Args().First()
					migrator, ok := findMigrator(migrators, moduleName)
					if !ok {
						return fmt.Errorf("invalid module name: %s", moduleName)
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}

func newRiverCommand(dsn string) *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "reset queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or upgrade the river_job tables",
				Action: func(c *cli.Context) error {
					pool, err := pgxpool.New(c.Context, dsn)
					if err != nil {
						return fmt.Errorf("failed to create pgx pool: %w", err)
					}
					defer pool.Close()

					if err := leaderboardqueue.Migrate(c.Context, pool); err != nil {
						return err
					}
					fmt.Println("River schema is up to date")
					return nil
				},
			},
		},
	}
}

func newSeedCommand(cfg *config.Config, db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert fake players with game history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 25, Usage: "number of players"},
			&cli.IntFlag{Name: "max-games", Value: 30, Usage: "upper bound on games per player"},
			&cli.Int64Flag{Name: "seed", Usage: "faker seed, random when zero"},
			&cli.StringFlag{Name: "password", Value: "password", Usage: "password shared by every seeded player"},
		},
		Action: func(c *cli.Context) error {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("refusing to seed outside development (environment %q)", cfg.Observability.Environment)
			}

			hash, err := userservice.NewBcryptHasher().Hash(c.String("password"))
			if err != nil {
				return err
			}

			var gen *seed.Generator
			if s := c.Int64("seed"); s != 0 {
				gen = seed.NewGenerator(s)
			} else {
				gen = seed.NewGenerator()
			}

			users := gen.Users(c.Int("users"), c.Int("max-games"), hash)
			if err := seed.Insert(c.Context, db, users); err != nil {
				return err
			}
			fmt.Printf("Seeded %d players (seed %d)\n", len(users), gen.Seed())
			return nil
		},
	}
}
