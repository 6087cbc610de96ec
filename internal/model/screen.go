package model

import "time"

// Screen is an auditorium inside a cinema.  Screen names are unique
// per cinema.  Every screen shares the same virtual seat grid (see
// booking.Rows and booking.Cols), regardless of its physical size.
type Screen struct {
    ID        uint64    // screens.id
    CinemaID  uint64    // screens.cinema_id
    Name      string    // screens.name
    CreatedAt time.Time // screens.created_at
    UpdatedAt time.Time // screens.updated_at
}
