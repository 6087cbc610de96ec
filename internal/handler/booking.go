package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// BookingHandler exposes the booking lifecycle to authenticated users.
type BookingHandler struct {
	Svc *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler { return &BookingHandler{Svc: svc} }

// seatReq uses pointers so an omitted row or col is told apart from 0.
type seatReq struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type createBookingReq struct {
	ShowID uint64    `json:"show_id"`
	Seats  []seatReq `json:"seats"`
}

func (r createBookingReq) seats() ([]model.Seat, error) {
	out := make([]model.Seat, 0, len(r.Seats))
	for _, s := range r.Seats {
		if s.Row == nil || s.Col == nil {
			return nil, apperror.Validation("seat row and col are required")
		}
		out = append(out, model.Seat{Row: *s.Row, Col: *s.Col})
	}
	return out, nil
}

// Create: POST /api/bookings {show_id, seats: [{row, col}, ...]}
func (h *BookingHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.ShowID == 0 {
		return respondError(c, apperror.Validation("show_id is required"))
	}
	seats, err := req.seats()
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Svc.CreateBooking(c.Request().Context(), u.ID, req.ShowID, seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingOut(b))
}

// ListMine: GET /api/bookings/me, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Svc.ListUserBookings(c.Request().Context(), u.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toBookingOut))
}

// Cancel: DELETE /api/bookings/:id. Bookings of other users look missing.
func (h *BookingHandler) Cancel(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Svc.CancelBooking(c.Request().Context(), u.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
