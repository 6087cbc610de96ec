package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"    // catalogue and user handlers
	"github.com/iliyamo/cinema-booking/internal/middleware" // JWT + admin middlewares
)

// RegisterAdmin registers admin-only endpoints under /api.  Every route
// requires a valid JWT and the admin flag; successful writes run
// invalidate so cached catalogue reads are dropped.
func RegisterAdmin(e *echo.Echo, h *handler.CatalogHandler, u *handler.UserHandler, gate middleware.Authenticator, invalidate echo.MiddlewareFunc) {
	// Middlewares are attached per route rather than with Group.Use so that
	// unknown /api paths still answer 404 instead of 401.
	admin := []echo.MiddlewareFunc{middleware.JWTAuth(gate), middleware.RequireAdmin(), invalidate}
	g := e.Group("/api")

	// ---- Cinemas ----
	g.POST("/cinemas", h.CreateCinema, admin...)
	g.PUT("/cinemas/:id", h.UpdateCinema, admin...)
	g.PATCH("/cinemas/:id", h.UpdateCinema, admin...) // alias for clients that use PATCH
	g.DELETE("/cinemas/:id", h.DeleteCinema, admin...)

	// ---- Screens ----
	g.POST("/screens", h.CreateScreen, admin...)
	g.PUT("/screens/:id", h.UpdateScreen, admin...)
	g.PATCH("/screens/:id", h.UpdateScreen, admin...)
	g.DELETE("/screens/:id", h.DeleteScreen, admin...)

	// ---- Movies ----
	g.POST("/movies", h.CreateMovie, admin...)
	g.PUT("/movies/:id", h.UpdateMovie, admin...)
	g.PATCH("/movies/:id", h.UpdateMovie, admin...)
	g.DELETE("/movies/:id", h.DeleteMovie, admin...)

	// ---- Shows ----
	g.POST("/shows", h.CreateShow, admin...)
	g.PUT("/shows/:id", h.UpdateShow, admin...)
	g.PATCH("/shows/:id", h.UpdateShow, admin...)
	g.DELETE("/shows/:id", h.DeleteShow, admin...)
	// Bookings of a show with the name and email of each owner.
	g.GET("/shows/:id/bookings", h.ShowBookings, admin...)

	// ---- Users ----
	// Deletes the user together with their bookings and refresh tokens.
	g.DELETE("/users/:id", u.Delete, admin...)
}
