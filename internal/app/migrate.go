package app

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MustMigratePostgres applies pending schema migrations. It opens a
// short-lived database/sql connection of its own because the
// migrate driver cannot run over a pgx pool.
func MustMigratePostgres() {
	db, err := sql.Open("pgx", postgresConnURL())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to open migration connection")
		panic(err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create migration driver")
		panic(err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load embedded migrations")
		panic(err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create migrator")
		panic(err)
	}
	defer func() { _, _ = m.Close() }()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		globalLogger.Error().
			Err(err).
			Msg("failed to apply migrations")
		panic(err)
	}
	globalLogger.Info().Msg("applied migrations")
}
