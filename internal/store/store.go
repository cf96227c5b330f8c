// Package store provides bun-backed persistence for products and
// webhooks. Postgres (lib/pq) in production, SQLite in tests.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// Sentinel errors for store operations. Use errors.Is() in calling code.
var (
	// ErrWebhookNotFound indicates the referenced webhook does not exist.
	ErrWebhookNotFound = errors.New("webhook not found")
)

// Open connects to the database named by dsn and verifies it with a
// bounded retry, so the server survives a database that is still coming
// up. DSNs starting with postgres:// use the Postgres driver; a "file:"
// or ":memory:" DSN uses SQLite.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// InitSchema creates the catalog tables when they do not exist yet.
func InitSchema(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Product)(nil),
		(*models.Webhook)(nil),
	}
	for _, table := range tables {
		if _, err := db.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
