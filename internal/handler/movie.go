package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
)

type movieReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
}

func (h *CatalogHandler) ListMovies(c echo.Context) error {
	list, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, mapSlice(list, toMovieOut))
}

func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toMovieOut(m))
}

// CreateMovie: POST /api/movies {title, description, duration}
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	m := model.Movie{Title: trimmed(req.Title)}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.Duration != nil {
		m.Duration = *req.Duration
	}
	if m.Title == "" {
		return respondError(c, apperror.Validation("title is required"))
	}
	if m.Duration <= 0 {
		return respondError(c, apperror.Validation("duration must be positive"))
	}
	if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toMovieOut(m))
}

func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req movieReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if req.Title != nil {
		if m.Title = trimmed(req.Title); m.Title == "" {
			return respondError(c, apperror.Validation("title must not be empty"))
		}
	}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return respondError(c, apperror.Validation("duration must be positive"))
		}
		m.Duration = *req.Duration
	}
	if err := h.Movies.Update(ctx, &m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toMovieOut(m))
}

// DeleteMovie removes the movie, its shows and their bookings.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Movies.DeleteByID(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
