package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// RegisterBooking registers the booking endpoints under /api/bookings.  All
// routes require a valid JWT; creating a booking also passes the rate
// limiter.  Ownership is enforced by the booking service.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, gate middleware.Authenticator, limiter echo.MiddlewareFunc) {
	jwt := middleware.JWTAuth(gate)
	g := e.Group("/api/bookings")

	// The limiter runs after JWTAuth so buckets can be keyed per user.
	g.POST("", h.Create, jwt, limiter)
	g.GET("/me", h.ListMine, jwt)
	g.DELETE("/:id", h.Cancel, jwt)
}
