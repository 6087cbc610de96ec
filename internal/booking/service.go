package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/metrics"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// ShowStore is the part of the show repository the service needs.
type ShowStore interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error)
}

// BookingStore is the part of the booking repository the service needs.
type BookingStore interface {
	ListByShowTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.Booking, error)
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	DeleteForUser(ctx context.Context, id, userID uint64) (model.Booking, error)
}

// Service creates, lists and cancels bookings.
type Service struct {
	db       *sql.DB
	shows    ShowStore
	bookings BookingStore
	pub      queue.Publisher
	log      *zap.Logger
}

// NewService wires the service.  A nil publisher disables events and a
// nil logger discards output.
func NewService(db *sql.DB, shows ShowStore, bookings BookingStore, pub queue.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, shows: shows, bookings: bookings, pub: pub, log: log}
}

// CreateBooking validates seats, checks them against the show's existing
// bookings and stores the booking, all in one transaction.  Seats taken by
// a concurrent writer between the check and the insert are reported as a
// conflict as well.
func (s *Service) CreateBooking(ctx context.Context, userID, showID uint64, seats []model.Seat) (model.Booking, error) {
	if err := ValidateSeats(seats); err != nil {
		s.rejected(err)
		return model.Booking{}, err
	}

	b := model.Booking{UserID: userID, ShowID: showID, Seats: append([]model.Seat(nil), seats...)}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.shows.ExistsTx(ctx, tx, showID)
		if err != nil {
			return apperror.Internal("load show", err)
		}
		if !ok {
			return apperror.NotFound("show not found")
		}
		existing, err := s.bookings.ListByShowTx(ctx, tx, showID)
		if err != nil {
			return apperror.Internal("load bookings", err)
		}
		if taken := Conflicts(Occupied(existing), b.Seats); len(taken) > 0 {
			return apperror.Conflict("seats already booked").With("seats", taken)
		}
		if err := s.bookings.CreateTx(ctx, tx, &b); err != nil {
			if errors.Is(err, repository.ErrSeatTaken) {
				return apperror.Conflict("seats already booked")
			}
			return apperror.Internal("create booking", err)
		}
		return nil
	})
	if err != nil {
		var ae *apperror.Error
		if !errors.As(err, &ae) {
			// begin/commit failures arrive unwrapped
			err = apperror.Internal("create booking", err)
		}
		if apperror.Is(err, apperror.KindInternal) {
			s.log.Error("create booking failed", zap.Uint64("show_id", showID), zap.Error(err))
		}
		s.rejected(err)
		return model.Booking{}, err
	}

	metrics.BookingsCreated.Inc()
	s.log.Info("booking created",
		zap.Uint64("booking_id", b.ID), zap.Uint64("user_id", userID),
		zap.Uint64("show_id", showID), zap.Int("seats", len(b.Seats)))
	s.publish(ctx, queue.QueueBookingCreated, b)
	return b, nil
}

// ListUserBookings returns the user's bookings, most recent first.
func (s *Service) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	list, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("list bookings", err)
	}
	return list, nil
}

// CancelBooking deletes a booking owned by userID.  A booking that is
// missing and one that belongs to someone else both yield not_found.
func (s *Service) CancelBooking(ctx context.Context, userID, bookingID uint64) error {
	b, err := s.bookings.DeleteForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("booking not found")
		}
		return apperror.Internal("cancel booking", err)
	}
	metrics.BookingsCancelled.Inc()
	s.log.Info("booking cancelled", zap.Uint64("booking_id", bookingID), zap.Uint64("user_id", userID))
	s.publish(ctx, queue.QueueBookingCancelled, b)
	return nil
}

func (s *Service) rejected(err error) {
	metrics.BookingsRejected.WithLabelValues(string(apperror.KindOf(err))).Inc()
}

// PublishTimeout bounds how long a committed write waits on the broker.
const PublishTimeout = 2 * time.Second

// publish is best effort: a broker outage never fails a committed write.
func (s *Service) publish(ctx context.Context, typ string, b model.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := s.pub.Publish(ctx, queue.NewBookingEvent(typ, b)); err != nil {
		metrics.EventsPublishFailed.WithLabelValues(typ).Inc()
		s.log.Warn("publish booking event failed", zap.String("queue", typ), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}
