package store

import (
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	pkgerrors "github.com/pkg/errors"
)

type postgresStore struct {
	baseStore
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		style TEXT NOT NULL,
		recipe_type TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		og DOUBLE PRECISION NOT NULL,
		fg DOUBLE PRECISION NOT NULL,
		abv DOUBLE PRECISION NOT NULL,
		ibu INTEGER NOT NULL,
		brew_time INTEGER NOT NULL,
		ingredients_json TEXT NOT NULL,
		instructions_json TEXT NOT NULL,
		notes TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS brew_sessions (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		recipe_id TEXT NOT NULL,
		og DOUBLE PRECISION NOT NULL,
		fg DOUBLE PRECISION NOT NULL,
		abv DOUBLE PRECISION NOT NULL,
		attenuation DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_brew_sessions_created ON brew_sessions(created_at)`,
	`CREATE TABLE IF NOT EXISTS version_history (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		version TEXT NOT NULL,
		build_number TEXT NOT NULL,
		release_date TEXT NOT NULL,
		changes_json TEXT NOT NULL,
		version_type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_version_history_release ON version_history(release_date)`,
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/hba?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open postgres database")
	}
	return &postgresStore{baseStore{db: db, numbered: true, schema: postgresSchema}}, nil
}
