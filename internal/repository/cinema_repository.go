// Package repository contains data access logic separated from HTTP handlers.
// This file holds the cinema repository: CRUD plus the cascading delete
// that removes every screen, show and booking under a cinema.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// CinemaRepo encapsulates all database queries related to cinemas.  It
// depends on a sql.DB connection which should be configured elsewhere.
type CinemaRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
	return &CinemaRepo{db: db}
}

const cinemaColumns = "id, name, location, created_at, updated_at"

func scanCinema(row interface{ Scan(...any) error }) (model.Cinema, error) {
	var c model.Cinema
	err := row.Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new cinema.  On success the cinema's ID and timestamp
// fields are populated so callers receive a fully populated record.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	now := time.Now().UTC()
	id, err := insertID(ctx, r.db,
		"INSERT INTO cinemas (name, location, created_at, updated_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Location, now, now)
	if err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetByID fetches a cinema by its ID.  It returns ErrCinemaNotFound if no
// row is found.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (model.Cinema, error) {
	c, err := scanCinema(r.db.QueryRowContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas WHERE id = ?", id))
	return c, notFound(err, ErrCinemaNotFound)
}

// Exists reports whether a cinema with the given id is stored.
func (r *CinemaRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "cinemas", id)
}

// List returns every cinema ordered by id.
func (r *CinemaRepo) List(ctx context.Context) ([]model.Cinema, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Cinema{}
	for rows.Next() {
		c, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes name and location for an existing cinema and refreshes
// UpdatedAt.  ErrCinemaNotFound is returned when the id is unknown.
func (r *CinemaRepo) Update(ctx context.Context, c *model.Cinema) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE cinemas SET name = ?, location = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Location, now, c.ID)
	if err != nil {
		return err
	}
	if err := affected(res, ErrCinemaNotFound); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteByID removes a cinema and every screen, show, booking and booked
// seat beneath it.  The deletion occurs within a transaction to ensure
// that no partial cleanup occurs.
func (r *CinemaRepo) DeleteByID(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if ok, err := exists(ctx, tx, "cinemas", id); err != nil {
			return err
		} else if !ok {
			return ErrCinemaNotFound
		}
		if err := deleteShowsWhere(ctx, tx, "screen_id IN (SELECT id FROM screens WHERE cinema_id = ?)", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM screens WHERE cinema_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM cinemas WHERE id = ?", id)
		return err
	})
}

// Count returns the number of cinemas.
func (r *CinemaRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "cinemas")
}

// exists checks a primary key in the given table.  table is always a
// constant supplied by this package.
func exists(ctx context.Context, q queryer, table string, id uint64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func count(ctx context.Context, q queryer, table string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// deleteShowsWhere removes the shows matching cond together with their
// bookings and booked seats.  cond is written against the shows table
// without an alias.
func deleteShowsWhere(ctx context.Context, tx *sql.Tx, cond string, args ...any) error {
	stmts := []string{
		"DELETE FROM booking_seats WHERE show_id IN (SELECT id FROM shows WHERE " + cond + ")",
		"DELETE FROM bookings WHERE show_id IN (SELECT id FROM shows WHERE " + cond + ")",
		"DELETE FROM shows WHERE " + cond,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}
