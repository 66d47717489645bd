package leaderboardmigrations

import "github.com/uptrace/bun/migrate"

// Migrations is built during variable initialization so caller discovery is
// on before any file's init registers a migration.
var Migrations = newMigrations()

func newMigrations() *migrate.Migrations {
	m := migrate.NewMigrations()
	// Migration IDs are derived from each registering file's name.
	if err := m.DiscoverCaller(); err != nil {
		panic(err)
	}
	return m
}
