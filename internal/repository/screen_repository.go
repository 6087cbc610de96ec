package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// ScreenRepo manages persistence for screens (auditoriums of a cinema).
type ScreenRepo struct {
	db *sql.DB
}

func NewScreenRepo(db *sql.DB) *ScreenRepo {
	return &ScreenRepo{db: db}
}

const screenColumns = "id, cinema_id, name, created_at, updated_at"

func scanScreen(row interface{ Scan(...any) error }) (model.Screen, error) {
	var s model.Screen
	err := row.Scan(&s.ID, &s.CinemaID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a screen.  A second screen with the same name in the same
// cinema yields ErrDuplicate.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	now := time.Now().UTC()
	id, err := insertID(ctx, r.db,
		"INSERT INTO screens (cinema_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		s.CinemaID, s.Name, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	s.ID, s.CreatedAt, s.UpdatedAt = id, now, now
	return nil
}

func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (model.Screen, error) {
	s, err := scanScreen(r.db.QueryRowContext(ctx, "SELECT "+screenColumns+" FROM screens WHERE id = ?", id))
	return s, notFound(err, ErrScreenNotFound)
}

func (r *ScreenRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "screens", id)
}

// List returns screens ordered by id, optionally restricted to one cinema.
func (r *ScreenRepo) List(ctx context.Context, cinemaID *uint64) ([]model.Screen, error) {
	q := "SELECT " + screenColumns + " FROM screens"
	var args []any
	if cinemaID != nil {
		q += " WHERE cinema_id = ?"
		args = append(args, *cinemaID)
	}
	q += " ORDER BY id ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Screen{}
	for rows.Next() {
		s, err := scanScreen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update writes the cinema and name of an existing screen.
func (r *ScreenRepo) Update(ctx context.Context, s *model.Screen) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE screens SET cinema_id = ?, name = ?, updated_at = ? WHERE id = ?",
		s.CinemaID, s.Name, now, s.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if err := affected(res, ErrScreenNotFound); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}

// DeleteByID removes a screen with its shows and their bookings.
func (r *ScreenRepo) DeleteByID(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if ok, err := exists(ctx, tx, "screens", id); err != nil {
			return err
		} else if !ok {
			return ErrScreenNotFound
		}
		if err := deleteShowsWhere(ctx, tx, "screen_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM screens WHERE id = ?", id)
		return err
	})
}
