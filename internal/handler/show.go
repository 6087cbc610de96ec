package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

type showReq struct {
	MovieID   *uint64 `json:"movie_id"`
	ScreenID  *uint64 `json:"screen_id"`
	StartTime *string `json:"start_time"` // RFC3339
}

type seatMapOut struct {
	ShowID    uint64       `json:"show_id"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Booked    []model.Seat `json:"booked"`
	Available int          `json:"available"`
}

type showBookingOut struct {
	bookingOut
	User struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func toShowBookingOut(b model.ShowBooking) showBookingOut {
	out := showBookingOut{bookingOut: toBookingOut(b.Booking)}
	out.User.Name, out.User.Email = b.UserName, b.UserEmail
	return out
}

// ListShows: GET /api/shows?movie_id=&screen_id=
func (h *CatalogHandler) ListShows(c echo.Context) error {
	var f repository.ShowFilter
	var err error
	if f.MovieID, err = queryID(c, "movie_id"); err != nil {
		return respondError(c, err)
	}
	if f.ScreenID, err = queryID(c, "screen_id"); err != nil {
		return respondError(c, err)
	}
	list, err := h.Shows.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toShowOut))
}

func (h *CatalogHandler) GetShow(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	s, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toShowOut(s))
}

// CreateShow: POST /api/shows {movie_id, screen_id, start_time}
func (h *CatalogHandler) CreateShow(c echo.Context) error {
	var req showReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.MovieID == nil || req.ScreenID == nil || req.StartTime == nil {
		return respondError(c, apperror.Validation("movie_id, screen_id and start_time are required"))
	}
	start, err := parseStart(*req.StartTime)
	if err != nil {
		return respondError(c, err)
	}
	s := model.Show{MovieID: *req.MovieID, ScreenID: *req.ScreenID, StartTime: start}
	ctx := c.Request().Context()
	if err := h.checkRefs(ctx, s); err != nil {
		return respondError(c, err)
	}
	if err := h.Shows.Create(ctx, &s); err != nil {
		return respondError(c, showConflict(err))
	}
	return c.JSON(http.StatusCreated, toShowOut(s))
}

// UpdateShow applies the fields present in the body.
func (h *CatalogHandler) UpdateShow(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req showReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	s, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if req.MovieID != nil {
		s.MovieID = *req.MovieID
	}
	if req.ScreenID != nil {
		s.ScreenID = *req.ScreenID
	}
	if req.StartTime != nil {
		if s.StartTime, err = parseStart(*req.StartTime); err != nil {
			return respondError(c, err)
		}
	}
	if err := h.checkRefs(ctx, s); err != nil {
		return respondError(c, err)
	}
	if err := h.Shows.Update(ctx, &s); err != nil {
		return respondError(c, showConflict(err))
	}
	return c.JSON(http.StatusOK, toShowOut(s))
}

// DeleteShow removes the show and its bookings.
func (h *CatalogHandler) DeleteShow(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Shows.DeleteByID(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SeatMap: GET /api/shows/:id/seats
func (h *CatalogHandler) SeatMap(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Shows.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	booked, err := h.Bookings.BookedSeats(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if booked == nil {
		booked = []model.Seat{}
	}
	return c.JSON(http.StatusOK, seatMapOut{
		ShowID:    id,
		Rows:      booking.Rows,
		Cols:      booking.Cols,
		Booked:    booked,
		Available: booking.Rows*booking.Cols - len(booked),
	})
}

// ShowBookings: GET /api/shows/:id/bookings (admin)
func (h *CatalogHandler) ShowBookings(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Shows.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	list, err := h.Bookings.ListByShow(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toShowBookingOut))
}

// checkRefs makes sure the movie and screen of a show exist.
func (h *CatalogHandler) checkRefs(ctx context.Context, s model.Show) error {
	ok, err := h.Movies.Exists(ctx, s.MovieID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("movie not found")
	}
	if ok, err = h.Screens.Exists(ctx, s.ScreenID); err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("screen not found")
	}
	return nil
}

func parseStart(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.Validation("start_time must be RFC3339")
	}
	return t.UTC(), nil
}

func showConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("screen already has a show at this time")
	}
	return err
}
