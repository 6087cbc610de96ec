package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(model.Seat{Row: 0, Col: 0}))
	assert.True(t, IsValid(model.Seat{Row: 9, Col: 9}))
	assert.False(t, IsValid(model.Seat{Row: 10, Col: 0}))
	assert.False(t, IsValid(model.Seat{Row: 0, Col: 10}))
	assert.False(t, IsValid(model.Seat{Row: -1, Col: 3}))
}

func TestValidateSeats(t *testing.T) {
	tests := []struct {
		name   string
		seats  []model.Seat
		detail string
	}{
		{"empty", nil, "at least one seat is required"},
		{"too many", seats(0, 0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6), "at most 6 seats per booking"},
		{"out of range", seats(0, 0, 10, 1), "seat out of range"},
		{"negative", seats(-1, 0), "seat out of range"},
		{"duplicate", seats(2, 2, 3, 3, 2, 2), "duplicate seats not allowed"},
		{"single", seats(5, 5), ""},
		{"six", seats(0, 0, 0, 1, 0, 2, 0, 3, 0, 4, 9, 9), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeats(tt.seats)
			if tt.detail == "" {
				assert.NoError(t, err)
				return
			}
			var ae *apperror.Error
			if assert.ErrorAs(t, err, &ae) {
				assert.Equal(t, apperror.KindValidation, ae.Kind)
				assert.Equal(t, tt.detail, ae.Detail)
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	occupied := Occupied([]model.Booking{
		{Seats: seats(0, 0, 0, 1)},
		{Seats: seats(5, 5)},
	})
	assert.Len(t, occupied, 3)

	assert.Empty(t, Conflicts(occupied, seats(0, 2, 4, 4)))
	assert.Equal(t, seats(5, 5, 0, 1), Conflicts(occupied, seats(5, 5, 0, 2, 0, 1)))
	assert.Empty(t, Conflicts(Occupied(nil), seats(0, 0)))
}
