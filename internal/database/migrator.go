package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Every SQL file under migrations/ is embedded at compile time, so the
// binary carries its migrations and needs no filesystem at runtime.
//
//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the usage table up to date with jackc/tern.
//
// Behavior:
//   - Connect with a single pgx connection (not the pool)
//   - Load the embedded migrations into a tern migrator
//   - Run them up to the latest version
//   - Log whether anything changed
//
// The migrations are text templates; the configured table name is passed
// in as {{ .usage_table }}, already quoted as an identifier.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// tern records the applied version in the schema_version table.
	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}
	m.Data = map[string]interface{}{
		"usage_table": pgx.Identifier{cfg.Store.Table}.Sanitize(),
	}

	// tern wants an fs.FS rooted at the directory holding the files; it
	// orders migrations by their numeric filename prefix.
	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	// from is the version already applied before this run.
	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	// Nothing changed when the applied version already equals the number of
	// loaded migrations.
	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
