package dataaccess

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		main TEXT NOT NULL,
		sub TEXT NULL,
		created_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_main ON categories (main)`,
	`CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		registered_at TIMESTAMP NULL
	)`,
}

func migrateSQLite(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing schema statement: %w", err)
		}
	}
	return nil
}
