package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// CatalogHandler serves cinemas, screens, movies and shows. Reads are
// public; writes are mounted behind RequireAdmin by the router.
type CatalogHandler struct {
	Cinemas  *repository.CinemaRepo
	Screens  *repository.ScreenRepo
	Movies   *repository.MovieRepo
	Shows    *repository.ShowRepo
	Bookings *repository.BookingRepo
}

func NewCatalogHandler(cr *repository.CinemaRepo, sr *repository.ScreenRepo, mr *repository.MovieRepo,
	shr *repository.ShowRepo, br *repository.BookingRepo) *CatalogHandler {
	return &CatalogHandler{Cinemas: cr, Screens: sr, Movies: mr, Shows: shr, Bookings: br}
}

type cinemaReq struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

func (h *CatalogHandler) ListCinemas(c echo.Context) error {
	list, err := h.Cinemas.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toCinemaOut))
}

func (h *CatalogHandler) GetCinema(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cin, err := h.Cinemas.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCinemaOut(cin))
}

// CreateCinema: POST /api/cinemas {name, location}
func (h *CatalogHandler) CreateCinema(c echo.Context) error {
	var req cinemaReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cin := model.Cinema{Name: trimmed(req.Name), Location: trimmed(req.Location)}
	if cin.Name == "" || cin.Location == "" {
		return respondError(c, apperror.Validation("name and location are required"))
	}
	if err := h.Cinemas.Create(c.Request().Context(), &cin); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toCinemaOut(cin))
}

// UpdateCinema applies the fields present in the body.
func (h *CatalogHandler) UpdateCinema(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req cinemaReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	cin, err := h.Cinemas.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if req.Name != nil {
		if cin.Name = trimmed(req.Name); cin.Name == "" {
			return respondError(c, apperror.Validation("name must not be empty"))
		}
	}
	if req.Location != nil {
		if cin.Location = trimmed(req.Location); cin.Location == "" {
			return respondError(c, apperror.Validation("location must not be empty"))
		}
	}
	if err := h.Cinemas.Update(ctx, &cin); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCinemaOut(cin))
}

// DeleteCinema removes the cinema with its screens, shows and bookings.
func (h *CatalogHandler) DeleteCinema(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Cinemas.DeleteByID(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
