package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, title, description, duration, created_at, updated_at"

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	id, err := insertID(ctx, r.db,
		"INSERT INTO movies (title, description, duration, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		m.Title, m.Description, m.Duration, now, now)
	if err != nil {
		return err
	}
	m.ID, m.CreatedAt, m.UpdatedAt = id, now, now
	return nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	return m, notFound(err, ErrMovieNotFound)
}

func (r *MovieRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "movies", id)
}

func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE movies SET title = ?, description = ?, duration = ?, updated_at = ? WHERE id = ?",
		m.Title, m.Description, m.Duration, now, m.ID)
	if err != nil {
		return err
	}
	if err := affected(res, ErrMovieNotFound); err != nil {
		return err
	}
	m.UpdatedAt = now
	return nil
}

// DeleteByID removes a movie along with its shows and their bookings.
func (r *MovieRepo) DeleteByID(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if ok, err := exists(ctx, tx, "movies", id); err != nil {
			return err
		} else if !ok {
			return ErrMovieNotFound
		}
		if err := deleteShowsWhere(ctx, tx, "movie_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
		return err
	})
}

func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "movies")
}
