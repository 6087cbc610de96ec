// Package testutil provides a migrated, file-backed SQLite database and
// small fixture helpers for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database"
)

// NewDB opens a fresh SQLite database in t.TempDir() with the full schema
// applied.  The handle is closed when the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.OpenSQLite(path)
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite), "migrate")
	return db
}

func insert(t testing.TB, db *sql.DB, query string, args ...any) uint64 {
	t.Helper()
	res, err := db.Exec(query, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// User inserts a user with an unusable password hash.
func User(t testing.TB, db *sql.DB, name, email string, admin bool) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO users (name, email, password_hash, is_admin, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		name, email, "x", admin, now, now)
}

// Cinema inserts a cinema.
func Cinema(t testing.TB, db *sql.DB, name string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO cinemas (name, location, created_at, updated_at) VALUES (?,?,?,?)",
		name, "Main Street", now, now)
}

// Screen inserts a screen in the given cinema.
func Screen(t testing.TB, db *sql.DB, cinemaID uint64, name string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO screens (cinema_id, name, created_at, updated_at) VALUES (?,?,?,?)",
		cinemaID, name, now, now)
}

// Movie inserts a two hour movie.
func Movie(t testing.TB, db *sql.DB, title string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO movies (title, description, duration, created_at, updated_at) VALUES (?,?,?,?,?)",
		title, "", 120, now, now)
}

// Show inserts a show of movieID on screenID starting at start.
func Show(t testing.TB, db *sql.DB, movieID, screenID uint64, start time.Time) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO shows (movie_id, screen_id, start_time, created_at, updated_at) VALUES (?,?,?,?,?)",
		movieID, screenID, start.UTC().Truncate(time.Second), now, now)
}

// ShowTime is the start of the show created by NewCatalog.
var ShowTime = time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)

// Catalog is a ready-made cinema, screen, movie and show.
type Catalog struct {
	CinemaID, ScreenID, MovieID, ShowID uint64
}

// NewCatalog inserts one show with its parents.
func NewCatalog(t testing.TB, db *sql.DB) Catalog {
	t.Helper()
	var c Catalog
	c.CinemaID = Cinema(t, db, "Odeon")
	c.ScreenID = Screen(t, db, c.CinemaID, "Screen 1")
	c.MovieID = Movie(t, db, "Heat")
	c.ShowID = Show(t, db, c.MovieID, c.ScreenID, ShowTime)
	return c
}
