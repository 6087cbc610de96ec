package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// BookingRepo persists bookings and their seats.  Every booked seat is a
// row in booking_seats; the unique index on (show_id, seat_row, seat_col)
// is the final guard against double booking.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// DB exposes the handle used to open booking transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingSelect = `SELECT b.id, b.user_id, b.show_id, b.created_at, bs.seat_row, bs.seat_col
	FROM bookings b
	JOIN booking_seats bs ON bs.booking_id = b.id`

// scanBookings folds joined (booking, seat) rows into bookings.  Rows of
// one booking must be adjacent, ordered by seat position.
func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		var (
			b    model.Booking
			seat model.Seat
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.ShowID, &b.CreatedAt, &seat.Row, &seat.Col); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == b.ID {
			out[n-1].Seats = append(out[n-1].Seats, seat)
			continue
		}
		b.Seats = []model.Seat{seat}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByShowTx returns every booking of a show inside tx.
func (r *BookingRepo) ListByShowTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.Booking, error) {
	rows, err := tx.QueryContext(ctx, bookingSelect+" WHERE b.show_id = ? ORDER BY b.id, bs.position", showID)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// CreateTx inserts the booking and one booking_seats row per seat.  If
// another transaction already holds one of the seats the insert fails
// with ErrSeatTaken and the caller must roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	now := time.Now().UTC()
	id, err := insertID(ctx, tx,
		"INSERT INTO bookings (user_id, show_id, created_at) VALUES (?, ?, ?)",
		b.UserID, b.ShowID, now)
	if err != nil {
		return err
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(b.Seats)*5)
	)
	sb.WriteString("INSERT INTO booking_seats (booking_id, show_id, seat_row, seat_col, position) VALUES ")
	// Rows go in seat order so concurrent writers lock index entries in
	// the same sequence; position keeps the client's order.
	order := make([]int, len(b.Seats))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, c := b.Seats[order[i]], b.Seats[order[j]]
		return a.Row < c.Row || (a.Row == c.Row && a.Col < c.Col)
	})
	for i, pos := range order {
		if i > 0 {
			sb.WriteString(", ")
		}
		s := b.Seats[pos]
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, id, b.ShowID, s.Row, s.Col, pos)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrSeatTaken
		}
		return err
	}
	b.ID, b.CreatedAt = id, now
	return nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingSelect+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC, bs.position ASC", userID)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// GetByID loads one booking with its seats.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return getBooking(ctx, r.db, id, nil)
}

func getBooking(ctx context.Context, q queryer, id uint64, userID *uint64) (model.Booking, error) {
	query := bookingSelect + " WHERE b.id = ?"
	args := []any{id}
	if userID != nil {
		query += " AND b.user_id = ?"
		args = append(args, *userID)
	}
	rows, err := q.QueryContext(ctx, query+" ORDER BY bs.position", args...)
	if err != nil {
		return model.Booking{}, err
	}
	list, err := scanBookings(rows)
	if err != nil {
		return model.Booking{}, err
	}
	if len(list) == 0 {
		return model.Booking{}, ErrBookingNotFound
	}
	return list[0], nil
}

// DeleteForUser removes a booking owned by userID and returns what was
// deleted.  A booking that does not exist and one owned by somebody else
// are indistinguishable: both yield ErrBookingNotFound.
func (r *BookingRepo) DeleteForUser(ctx context.Context, id, userID uint64) (model.Booking, error) {
	var deleted model.Booking
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := getBooking(ctx, tx, id, &userID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_seats WHERE booking_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return err
		}
		if err := affected(res, ErrBookingNotFound); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	return deleted, err
}

// ListByShow returns a show's bookings joined with the booking owner's
// name and email, oldest first.
func (r *BookingRepo) ListByShow(ctx context.Context, showID uint64) ([]model.ShowBooking, error) {
	rows, err := r.db.QueryContext(ctx, bookingSelect+" WHERE b.show_id = ? ORDER BY b.created_at ASC, b.id ASC, bs.position ASC", showID)
	if err != nil {
		return nil, err
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return []model.ShowBooking{}, nil
	}

	users := map[uint64][2]string{}
	urows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT u.id, u.name, u.email FROM users u JOIN bookings b ON b.user_id = u.id WHERE b.show_id = ?", showID)
	if err != nil {
		return nil, err
	}
	defer urows.Close()
	for urows.Next() {
		var (
			id          uint64
			name, email string
		)
		if err := urows.Scan(&id, &name, &email); err != nil {
			return nil, err
		}
		users[id] = [2]string{name, email}
	}
	if err := urows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.ShowBooking, 0, len(bookings))
	for _, b := range bookings {
		u := users[b.UserID]
		out = append(out, model.ShowBooking{Booking: b, UserName: u[0], UserEmail: u[1]})
	}
	return out, nil
}

// BookedSeats returns every seat currently booked for a show.
func (r *BookingRepo) BookedSeats(ctx context.Context, showID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seat_row, seat_col FROM booking_seats WHERE show_id = ? ORDER BY seat_row, seat_col", showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.Row, &s.Col); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByShow returns the number of bookings for a show.
func (r *BookingRepo) CountByShow(ctx context.Context, showID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE show_id = ?", showID).Scan(&n)
	return n, err
}
