// internal/db/db.go
//
// Database helpers.
// Responsibilities:
//   - Opening SQLite (default) or PostgreSQL (pgx) through database/sql.
//   - SQLite gets safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded goose migrations.
//   - Handing out a squirrel builder with the dialect's placeholder format.

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens the database for driver and checks connectivity.
//
// For SQLite the parent directory of a file DSN is created, and in-memory
// databases are pinned to a single connection so every query sees the same data.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	memory := strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	if !memory {
		path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	params := "_busy_timeout=5000&_foreign_keys=on"
	if !memory {
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sql.Open(DriverSQLite, dsn+sep+params)
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Migrate applies every pending migration from the embedded migrations directory.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect := "sqlite3"
	if driver == DriverPostgres {
		dialect = "postgres"
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}
	log.Info().Str("dialect", dialect).Msg("running database migrations")
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrations: goose up: %w", err)
	}
	return nil
}

// Builder returns a squirrel statement builder using the driver's placeholders.
func Builder(driver string) sq.StatementBuilderType {
	if driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
