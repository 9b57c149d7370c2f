package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id             TEXT     PRIMARY KEY,
		item_name      TEXT     NOT NULL,
		offer_type     TEXT     NOT NULL,
		description    TEXT     NOT NULL DEFAULT '',
		postal_code    TEXT     NOT NULL,
		contact_method TEXT     NOT NULL DEFAULT 'email',
		contact        TEXT     NOT NULL,
		price          TEXT     NOT NULL DEFAULT '',
		image          BLOB,
		owner          TEXT     NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		id         INTEGER  PRIMARY KEY AUTOINCREMENT,
		token      TEXT     NOT NULL UNIQUE,
		email      TEXT     NOT NULL,
		expires_at DATETIME NOT NULL,
		used       INTEGER  DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT     PRIMARY KEY,
		email      TEXT     NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS passkey_credentials (
		id              TEXT    PRIMARY KEY,
		email           TEXT    NOT NULL,
		name            TEXT    NOT NULL DEFAULT '',
		credential_json TEXT    NOT NULL,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		email        TEXT     NOT NULL DEFAULT '',
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS authorized_users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		email      TEXT    NOT NULL UNIQUE,
		name       TEXT    NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_postal_code ON listings (postal_code)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent: checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"authorized_users", "postal_code", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
