// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors. Entity specific
// not-found errors wrap ErrNotFound so callers may test either.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a uniqueness rule such
// as one show per (screen, start time) or unique screen names per cinema.
var ErrDuplicate = errors.New("duplicate")

// ErrSeatTaken is returned when a booking write is rejected because one
// of its seats is already held by another booking for the same show.
var ErrSeatTaken = errors.New("seat already booked")

// ErrEmailExists is returned when registering an email that is in use.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned for a refresh token that is unknown, revoked
// or expired.  The three cases are deliberately not told apart.
var ErrTokenInvalid = errors.New("refresh token invalid")

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrCinemaNotFound  = fmt.Errorf("cinema %w", ErrNotFound)
	ErrScreenNotFound  = fmt.Errorf("screen %w", ErrNotFound)
	ErrMovieNotFound   = fmt.Errorf("movie %w", ErrNotFound)
	ErrShowNotFound    = fmt.Errorf("show %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// notFound converts sql.ErrNoRows into the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// insertID executes an INSERT and returns the generated id.
func insertID(ctx context.Context, q queryer, query string, args ...any) (uint64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// affected returns sentinel when an UPDATE/DELETE touched no rows.
func affected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
