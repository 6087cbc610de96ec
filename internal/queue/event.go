// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer.
package queue

import (
    "time"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// Queue names.  The routing key equals the queue name on the default
// exchange.
const (
    QueueBookingCreated   = "booking.created"
    QueueBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking is committed or cancelled.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
    Type       string       `json:"type"` // queue name the event was sent to
    BookingID  uint64       `json:"booking_id"`
    UserID     uint64       `json:"user_id"`
    ShowID     uint64       `json:"show_id"`
    Seats      []model.Seat `json:"seats"`
    OccurredAt time.Time    `json:"occurred_at"`
}

// NewBookingEvent builds an event of the given type from a booking.
func NewBookingEvent(typ string, b model.Booking) BookingEvent {
    seats := make([]model.Seat, len(b.Seats))
    copy(seats, b.Seats)
    return BookingEvent{
        Type:       typ,
        BookingID:  b.ID,
        UserID:     b.UserID,
        ShowID:     b.ShowID,
        Seats:      seats,
        OccurredAt: time.Now().UTC(),
    }
}
