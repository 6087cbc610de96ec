package booking

import "github.com/iliyamo/cinema-booking/internal/model"

// SeatSet is a set of seat coordinates.
type SeatSet map[model.Seat]struct{}

// Occupied unions the seats of every given booking.
func Occupied(bookings []model.Booking) SeatSet {
	set := SeatSet{}
	for _, b := range bookings {
		for _, s := range b.Seats {
			set[s] = struct{}{}
		}
	}
	return set
}

// Conflicts returns the candidate seats already present in occupied, in
// candidate order.  An empty result means the candidate is bookable.
func Conflicts(occupied SeatSet, candidate []model.Seat) []model.Seat {
	var out []model.Seat
	for _, s := range candidate {
		if _, taken := occupied[s]; taken {
			out = append(out, s)
		}
	}
	return out
}
