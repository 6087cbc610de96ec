package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
)

type screenReq struct {
	CinemaID uint64  `json:"cinema_id"`
	Name     *string `json:"name"`
}

// ListScreens: GET /api/screens?cinema_id=
func (h *CatalogHandler) ListScreens(c echo.Context) error {
	cinemaID, err := queryID(c, "cinema_id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Screens.List(c.Request().Context(), cinemaID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toScreenOut))
}

func (h *CatalogHandler) GetScreen(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	s, err := h.Screens.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toScreenOut(s))
}

// CreateScreen: POST /api/screens {cinema_id, name}
func (h *CatalogHandler) CreateScreen(c echo.Context) error {
	var req screenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	s := model.Screen{CinemaID: req.CinemaID, Name: trimmed(req.Name)}
	if s.CinemaID == 0 || s.Name == "" {
		return respondError(c, apperror.Validation("cinema_id and name are required"))
	}
	ctx := c.Request().Context()
	ok, err := h.Cinemas.Exists(ctx, s.CinemaID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respondError(c, apperror.NotFound("cinema not found"))
	}
	if err := h.Screens.Create(ctx, &s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toScreenOut(s))
}

// UpdateScreen renames a screen; a screen never moves between cinemas.
func (h *CatalogHandler) UpdateScreen(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req screenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	name := trimmed(req.Name)
	if name == "" {
		return respondError(c, apperror.Validation("name is required"))
	}
	ctx := c.Request().Context()
	s, err := h.Screens.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	s.Name = name
	if err := h.Screens.Update(ctx, &s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toScreenOut(s))
}

func (h *CatalogHandler) DeleteScreen(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Screens.DeleteByID(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
