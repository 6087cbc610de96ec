// Package booking implements seat validation, conflict detection and the
// booking lifecycle (create, list, cancel) on top of the repositories.
package booking

import (
	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Every show shares the same virtual grid regardless of the screen's
// physical capacity.
const (
	Rows     = 10
	Cols     = 10
	MaxSeats = 6
)

// IsValid reports whether s lies inside the grid.
func IsValid(s model.Seat) bool {
	return s.Row >= 0 && s.Row < Rows && s.Col >= 0 && s.Col < Cols
}

// ValidateSeats checks a candidate seat list: 1 to MaxSeats entries, all
// in bounds and pairwise distinct.
func ValidateSeats(seats []model.Seat) error {
	if len(seats) == 0 {
		return apperror.Validation("at least one seat is required")
	}
	if len(seats) > MaxSeats {
		return apperror.Validation("at most 6 seats per booking").With("max_seats", MaxSeats)
	}
	seen := make(map[model.Seat]struct{}, len(seats))
	for _, s := range seats {
		if !IsValid(s) {
			return apperror.Validation("seat out of range").With("seat", s)
		}
		if _, dup := seen[s]; dup {
			return apperror.Validation("duplicate seats not allowed").With("seat", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
