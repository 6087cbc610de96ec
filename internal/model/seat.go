package model

import "fmt"

// Seat is a (row, column) coordinate inside a show's seat grid.  It
// is not a standalone entity: seats are always stored as part of a
// Booking, one `booking_seats` row per coordinate.
type Seat struct {
    Row int `json:"row"`
    Col int `json:"col"`
}

// String renders the seat as "r<row>c<col>", used in logs and audit lines.
func (s Seat) String() string {
    return fmt.Sprintf("r%dc%d", s.Row, s.Col)
}
