package mapsync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens a bun database for the configured storage driver. The caller
// owns the returned handle and closes it on shutdown.
func OpenDB(cfg StorageConfig) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrStorageDSNRequired
	}

	switch driver {
	case "", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("mapsync: open sqlite database: %w", err)
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Driver)
	}
}

// CreateSchema creates the engine's tables when they do not exist yet. Hosts
// with their own migration tooling can skip this and manage DDL themselves.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*mapdoc.Store)(nil),
		(*mapdoc.Product)(nil),
		(*mapdoc.Element)(nil),
		(*mapdoc.ProductLink)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("mapsync: create schema: %w", err)
		}
	}
	return nil
}
