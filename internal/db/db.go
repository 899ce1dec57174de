// Package db persists the broker save state in SQLite.
package db

import (
	"database/sql"
	"fmt"

	"star-broker/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS player (
				id        INTEGER PRIMARY KEY CHECK (id = 1),
				credits   INTEGER NOT NULL,
				location  TEXT NOT NULL,
				unlocked  TEXT NOT NULL,
				inventory TEXT NOT NULL,
				avg_cost  TEXT NOT NULL,
				bonuses   TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS intel_packets (
				id             TEXT PRIMARY KEY,
				offer_location TEXT NOT NULL,
				deal_location  TEXT NOT NULL,
				commodity      TEXT NOT NULL,
				discount       REAL NOT NULL,
				duration       INTEGER NOT NULL,
				message_key    TEXT NOT NULL,
				price_seed     REAL NOT NULL,
				purchased      INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_intel_offer_loc ON intel_packets(offer_location);

			CREATE TABLE IF NOT EXISTS active_deal (
				id             INTEGER PRIMARY KEY CHECK (id = 1),
				deal_location  TEXT NOT NULL,
				commodity      TEXT NOT NULL,
				override_price INTEGER NOT NULL,
				expiry_day     INTEGER NOT NULL,
				source_packet  TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS clock (
				id  INTEGER PRIMARY KEY CHECK (id = 1),
				day INTEGER NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}
