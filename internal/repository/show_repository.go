// Package repository contains data access logic for Show domain operations.
// A Show is a scheduled screening of a movie on a screen.  At most one show
// may start on a screen at a given instant; the unique index surfaces as
// ErrDuplicate.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// ShowFilter narrows List to a movie and/or a screen.  Nil fields are
// ignored.
type ShowFilter struct {
	MovieID  *uint64
	ScreenID *uint64
}

const showColumns = "id, movie_id, screen_id, start_time, created_at, updated_at"

func scanShow(row interface{ Scan(...any) error }) (model.Show, error) {
	var s model.Show
	err := row.Scan(&s.ID, &s.MovieID, &s.ScreenID, &s.StartTime, &s.CreatedAt, &s.UpdatedAt)
	if err == nil {
		s.StartTime = s.StartTime.UTC()
	}
	return s, err
}

// Create inserts a new show and assigns the generated ID back to the
// show struct.  Start times are stored in UTC with second precision.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	now := time.Now().UTC()
	start := s.StartTime.UTC().Truncate(time.Second)
	id, err := insertID(ctx, r.db,
		"INSERT INTO shows (movie_id, screen_id, start_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		s.MovieID, s.ScreenID, start, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	s.ID, s.StartTime, s.CreatedAt, s.UpdatedAt = id, start, now, now
	return nil
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (model.Show, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, "SELECT "+showColumns+" FROM shows WHERE id = ?", id))
	return s, notFound(err, ErrShowNotFound)
}

// ExistsTx reports whether the show exists, reading through tx so the
// answer is consistent with the rest of the caller's unit of work.
func (r *ShowRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	return exists(ctx, tx, "shows", id)
}

// List returns shows ordered by start time ascending, then id.
func (r *ShowRepo) List(ctx context.Context, f ShowFilter) ([]model.Show, error) {
	q := "SELECT " + showColumns + " FROM shows WHERE 1=1"
	var args []any
	if f.MovieID != nil {
		q += " AND movie_id = ?"
		args = append(args, *f.MovieID)
	}
	if f.ScreenID != nil {
		q += " AND screen_id = ?"
		args = append(args, *f.ScreenID)
	}
	q += " ORDER BY start_time ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Show{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes movie, screen and start time of an existing show.  Moving
// a show onto an occupied (screen, start time) slot yields ErrDuplicate.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	now := time.Now().UTC()
	start := s.StartTime.UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"UPDATE shows SET movie_id = ?, screen_id = ?, start_time = ?, updated_at = ? WHERE id = ?",
		s.MovieID, s.ScreenID, start, now, s.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if err := affected(res, ErrShowNotFound); err != nil {
		return err
	}
	s.StartTime, s.UpdatedAt = start, now
	return nil
}

// DeleteByID removes a show and all of its bookings.  The deletion occurs
// within a transaction to ensure that no partial cleanup occurs.
func (r *ShowRepo) DeleteByID(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if ok, err := exists(ctx, tx, "shows", id); err != nil {
			return err
		} else if !ok {
			return ErrShowNotFound
		}
		return deleteShowsWhere(ctx, tx, "id = ?", id)
	})
}

func (r *ShowRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "shows")
}
