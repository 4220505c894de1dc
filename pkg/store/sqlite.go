package store

import (
	"database/sql"
	"strings"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	baseStore
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		style TEXT NOT NULL,
		recipe_type TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		og REAL NOT NULL,
		fg REAL NOT NULL,
		abv REAL NOT NULL,
		ibu INTEGER NOT NULL,
		brew_time INTEGER NOT NULL,
		ingredients_json TEXT NOT NULL,
		instructions_json TEXT NOT NULL,
		notes TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS brew_sessions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		recipe_id TEXT NOT NULL,
		og REAL NOT NULL,
		fg REAL NOT NULL,
		abv REAL NOT NULL,
		attenuation REAL NOT NULL,
		notes TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_brew_sessions_created ON brew_sessions(created_at)`,
	`CREATE TABLE IF NOT EXISTS version_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		version TEXT NOT NULL,
		build_number TEXT NOT NULL,
		release_date TEXT NOT NULL,
		changes_json TEXT NOT NULL,
		version_type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_version_history_release ON version_history(release_date)`,
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:hba.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open sqlite database")
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &sqliteStore{baseStore{db: db, schema: sqliteSchema}}, nil
}
