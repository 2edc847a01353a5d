// Package database centralises sqlx connection helpers and the embedded
// schema migrations.  Two drivers are supported: go-sql-driver/mysql (the
// default, which also works with MariaDB) and jackc/pgx for PostgreSQL.
//
// Public entry points:
//
//	Open(ctx, cfg)     – parse the DSN, inject the password, size the pool, and ping.
//	Migrate(ctx, db)   – apply the goose migrations for db's dialect.
//
// Open pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB when no longer
// needed.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/config"
)

// Pool defaults used when the config leaves them at zero.
const (
	DefaultMaxOpen = 15
	DefaultMaxIdle = 5
	connLifetime   = 30 * time.Minute
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Open returns a *sqlx.DB for cfg with conservative pool sizes and a
// 30-minute connection lifetime.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	var db *sqlx.DB
	switch cfg.Driver {
	case "mysql":
		dsn, err := mysqlDSN(cfg)
		if err != nil {
			return nil, err
		}
		if db, err = sqlx.Open("mysql", dsn); err != nil {
			return nil, err
		}
	case "pgx":
		cc, err := pgxConfig(cfg)
		if err != nil {
			return nil, err
		}
		db = sqlx.NewDb(stdlib.OpenDB(*cc), "pgx")
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}

	maxOpen, maxIdle := cfg.MaxOpen, cfg.MaxIdle
	if maxOpen == 0 {
		maxOpen = DefaultMaxOpen
	}
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdle
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	zap.L().Info("database online", zap.String("driver", cfg.Driver), zap.Int("max_open", maxOpen))
	return db, nil
}

// mysqlDSN parses the configured DSN and forces the options the stores
// rely on: parsed DATE/DATETIME columns in UTC wall time, and
// RowsAffected counting matched rather than changed rows.
func mysqlDSN(cfg config.Database) (string, error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("database: parse mysql dsn: %w", err)
	}
	if cfg.Password != "" {
		mc.Passwd = cfg.Password
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	return mc.FormatDSN(), nil
}

// pgxConfig parses the configured DSN and injects the password.
func pgxConfig(cfg config.Database) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database: parse pgx dsn: %w", err)
	}
	if cfg.Password != "" {
		cc.Password = cfg.Password
	}
	return cc, nil
}

/*──────────────────────────── migrations ───────────────────────────────────*/

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// dialectFS returns the goose dialect and migration directory for a driver.
func dialectFS(driver string) (string, fs.FS, error) {
	var dialect, dir string
	switch driver {
	case "mysql":
		dialect, dir = "mysql", "migrations/mysql"
	case "pgx", "postgres":
		dialect, dir = "postgres", "migrations/postgres"
	default:
		return "", nil, fmt.Errorf("database: no migrations for driver %q", driver)
	}
	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return "", nil, err
	}
	return dialect, sub, nil
}

// Migrate applies every pending migration for db's driver.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dialect, fsys, err := dialectFS(db.DriverName())
	if err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	zap.L().Info("database migrated", zap.String("dialect", dialect))
	return nil
}
