// Package store persists recipes, brew sessions and version history in a SQL
// database. SQLite and PostgreSQL are supported.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/types"
)

var ErrUnsupportedDriver = pkgerrors.New("unsupported storage driver")

type Store interface {
	Init(ctx context.Context) error
	Close() error

	SaveRecipe(ctx context.Context, r types.Recipe) error
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
	DeleteAllRecipes(ctx context.Context) (int64, error)

	RecordBrewSession(ctx context.Context, s types.BrewSession) error
	ListBrewSessions(ctx context.Context) ([]types.BrewSession, error)
	ClearBrewSessions(ctx context.Context) (int64, error)

	AddVersionEntry(ctx context.Context, v types.VersionEntry) error
	// ListVersionEntries returns the version history, newest first.
	ListVersionEntries(ctx context.Context) ([]types.VersionEntry, error)
	ClearVersionHistory(ctx context.Context) (int64, error)
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, pkgerrors.Wrapf(ErrUnsupportedDriver, "driver %q", cfg.Driver)
	}
}

// timeLayout sorts lexically in chronological order for UTC timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// baseStore holds the queries shared by all drivers. Queries are written
// with '?' placeholders and rewritten by bind for drivers that number them.
type baseStore struct {
	db       *sql.DB
	numbered bool
	schema   []string
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) Init(ctx context.Context) error {
	for _, stmt := range b.schema {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return pkgerrors.Wrapf(err, "failed to initialize schema")
		}
	}
	return nil
}

func (b *baseStore) bind(query string) string {
	if !b.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *baseStore) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := b.db.ExecContext(ctx, b.bind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to count affected rows")
	}
	return n, nil
}

func (b *baseStore) SaveRecipe(ctx context.Context, r types.Recipe) error {
	if r.ID == "" {
		return pkgerrors.New("recipe id is empty")
	}
	_, err := b.exec(ctx,
		`INSERT INTO recipes (id, name, style, recipe_type, difficulty, og, fg, abv, ibu, brew_time, ingredients_json, instructions_json, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			style = excluded.style,
			recipe_type = excluded.recipe_type,
			difficulty = excluded.difficulty,
			og = excluded.og,
			fg = excluded.fg,
			abv = excluded.abv,
			ibu = excluded.ibu,
			brew_time = excluded.brew_time,
			ingredients_json = excluded.ingredients_json,
			instructions_json = excluded.instructions_json,
			notes = excluded.notes`,
		r.ID,
		r.Name,
		r.Style,
		string(r.Type),
		string(r.Difficulty),
		r.OG,
		r.FG,
		r.ABV,
		r.IBU,
		r.BrewTime,
		encodeJSON(r.Ingredients),
		encodeJSON(r.Instructions),
		r.Notes,
		formatTime(nowUTC()),
	)
	return pkgerrors.Wrapf(err, "failed to save recipe %s", r.ID)
}

func (b *baseStore) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	rows, err := b.db.QueryContext(ctx, b.bind(
		`SELECT id, name, style, recipe_type, difficulty, og, fg, abv, ibu, brew_time, ingredients_json, instructions_json, notes
		FROM recipes ORDER BY seq`))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to query recipes")
	}
	defer rows.Close()

	var out []types.Recipe
	for rows.Next() {
		var (
			r                 types.Recipe
			rtype, difficulty string
			ingredients       string
			instructions      string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Style, &rtype, &difficulty, &r.OG, &r.FG, &r.ABV, &r.IBU,
			&r.BrewTime, &ingredients, &instructions, &r.Notes); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to scan recipe")
		}
		r.Type = types.RecipeType(rtype)
		r.Difficulty = types.Difficulty(difficulty)
		if err := decodeJSON(ingredients, &r.Ingredients); err != nil {
			return nil, pkgerrors.Wrapf(err, "recipe %s has malformed ingredients", r.ID)
		}
		if err := decodeJSON(instructions, &r.Instructions); err != nil {
			return nil, pkgerrors.Wrapf(err, "recipe %s has malformed instructions", r.ID)
		}
		out = append(out, r)
	}
	return out, pkgerrors.Wrapf(rows.Err(), "failed to iterate recipes")
}

func (b *baseStore) DeleteAllRecipes(ctx context.Context) (int64, error) {
	n, err := b.exec(ctx, `DELETE FROM recipes`)
	return n, pkgerrors.Wrapf(err, "failed to delete recipes")
}

func (b *baseStore) RecordBrewSession(ctx context.Context, s types.BrewSession) error {
	if s.ID == "" {
		return pkgerrors.New("brew session id is empty")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = nowUTC()
	}
	_, err := b.exec(ctx,
		`INSERT INTO brew_sessions (id, recipe_id, og, fg, abv, attenuation, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.RecipeID,
		s.OriginalGravity,
		s.FinalGravity,
		s.ABVPercent,
		s.AttenuationPercent,
		s.Notes,
		formatTime(s.CreatedAt),
	)
	return pkgerrors.Wrapf(err, "failed to record brew session %s", s.ID)
}

func (b *baseStore) ListBrewSessions(ctx context.Context) ([]types.BrewSession, error) {
	rows, err := b.db.QueryContext(ctx, b.bind(
		`SELECT id, recipe_id, og, fg, abv, attenuation, notes, created_at
		FROM brew_sessions ORDER BY created_at DESC, seq DESC`))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to query brew sessions")
	}
	defer rows.Close()

	var out []types.BrewSession
	for rows.Next() {
		var (
			s       types.BrewSession
			created string
		)
		if err := rows.Scan(&s.ID, &s.RecipeID, &s.OriginalGravity, &s.FinalGravity, &s.ABVPercent,
			&s.AttenuationPercent, &s.Notes, &created); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to scan brew session")
		}
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, pkgerrors.Wrapf(err, "brew session %s has malformed timestamp", s.ID)
		}
		out = append(out, s)
	}
	return out, pkgerrors.Wrapf(rows.Err(), "failed to iterate brew sessions")
}

func (b *baseStore) ClearBrewSessions(ctx context.Context) (int64, error) {
	n, err := b.exec(ctx, `DELETE FROM brew_sessions`)
	return n, pkgerrors.Wrapf(err, "failed to clear brew sessions")
}

func (b *baseStore) AddVersionEntry(ctx context.Context, v types.VersionEntry) error {
	if v.ID == "" {
		return pkgerrors.New("version entry id is empty")
	}
	_, err := b.exec(ctx,
		`INSERT INTO version_history (id, version, build_number, release_date, changes_json, version_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.Version,
		v.BuildNumber,
		formatTime(v.ReleaseDate),
		encodeJSON(v.Changes),
		string(v.Type),
	)
	return pkgerrors.Wrapf(err, "failed to add version entry %s", v.Version)
}

func (b *baseStore) ListVersionEntries(ctx context.Context) ([]types.VersionEntry, error) {
	rows, err := b.db.QueryContext(ctx, b.bind(
		`SELECT id, version, build_number, release_date, changes_json, version_type
		FROM version_history ORDER BY release_date DESC, seq DESC`))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to query version history")
	}
	defer rows.Close()

	var out []types.VersionEntry
	for rows.Next() {
		var (
			v                      types.VersionEntry
			released, changes, vt string
		)
		if err := rows.Scan(&v.ID, &v.Version, &v.BuildNumber, &released, &changes, &vt); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to scan version entry")
		}
		if v.ReleaseDate, err = parseTime(released); err != nil {
			return nil, pkgerrors.Wrapf(err, "version entry %s has malformed release date", v.Version)
		}
		if err := decodeJSON(changes, &v.Changes); err != nil {
			return nil, pkgerrors.Wrapf(err, "version entry %s has malformed changes", v.Version)
		}
		v.Type = types.VersionType(vt)
		out = append(out, v)
	}
	return out, pkgerrors.Wrapf(rows.Err(), "failed to iterate version history")
}

func (b *baseStore) ClearVersionHistory(ctx context.Context) (int64, error) {
	n, err := b.exec(ctx, `DELETE FROM version_history`)
	return n, pkgerrors.Wrapf(err, "failed to clear version history")
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}

func decodeJSON(s string, v any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
