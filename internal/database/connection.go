package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/lingua/internal/config"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open establishes a connection to the configured database
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if !isMemoryDSN(dsn) {
			// Create data directory if it doesn't exist
			if dir := filepath.Dir(strings.TrimPrefix(dsn, "file:")); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
		}
		dsn = withParam(dsn, "_loc=UTC")
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// Migrate creates the tables if they don't exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	types := columnTypes(db.DriverName())

	statements := []struct {
		name  string
		query string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id ` + types.id + `,
				username TEXT NOT NULL DEFAULT '',
				telegram_chat_id BIGINT,
				notification_enabled BOOLEAN NOT NULL DEFAULT FALSE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				daily_limit INTEGER NOT NULL DEFAULT 20,
				created_at ` + types.timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at ` + types.timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"items", `
			CREATE TABLE IF NOT EXISTS items (
				id ` + types.id + `,
				kind TEXT NOT NULL,
				text TEXT NOT NULL,
				translation TEXT NOT NULL DEFAULT '',
				structure TEXT NOT NULL DEFAULT '',
				topic TEXT NOT NULL DEFAULT '',
				verb_group TEXT NOT NULL DEFAULT '',
				tense TEXT NOT NULL DEFAULT '',
				person TEXT NOT NULL DEFAULT '',
				created_at ` + types.timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(kind, text)
			)`},
		{"review_states", `
			CREATE TABLE IF NOT EXISTS review_states (
				user_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				mastery_level INTEGER NOT NULL DEFAULT 0,
				first_learned_at ` + types.timestamp + `,
				last_reviewed_at ` + types.timestamp + `,
				next_review_at ` + types.timestamp + `,
				PRIMARY KEY (user_id, item_id)
			)`},
		{"review_states_next_review_idx", `
			CREATE INDEX IF NOT EXISTS review_states_next_review_idx
			ON review_states (user_id, next_review_at)`},
		{"review_events", `
			CREATE TABLE IF NOT EXISTS review_events (
				id ` + types.id + `,
				user_id BIGINT NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				outcome TEXT NOT NULL,
				occurred_at ` + types.timestamp + ` NOT NULL
			)`},
		{"review_events_occurred_idx", `
			CREATE INDEX IF NOT EXISTS review_events_occurred_idx
			ON review_events (user_id, occurred_at)`},
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	return nil
}
