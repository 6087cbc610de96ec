package model

import "time"

// Booking associates one user with one show and a set of 1–6 seats.
// Bookings are immutable once created; cancellation deletes the row
// (and its seats) permanently.  Seats keep the order in which the
// client submitted them, although order carries no meaning for
// conflict detection.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the booking.
//  ShowID    – show being booked.
//  Seats     – booked coordinates, stored in `booking_seats`.
//  CreatedAt – creation timestamp.
type Booking struct {
    ID        uint64    // bookings.id
    UserID    uint64    // bookings.user_id
    ShowID    uint64    // bookings.show_id
    Seats     []Seat    // booking_seats rows ordered by position
    CreatedAt time.Time // bookings.created_at
}

// ShowBooking is a booking joined with its owner's public profile.
// It backs the administrative per-show booking listing.
type ShowBooking struct {
    Booking
    UserName  string // users.name
    UserEmail string // users.email
}
