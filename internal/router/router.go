package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/cinema-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cinema-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers the operational endpoints: a health check for
// load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers account routes under /api.  signup, login and
// refresh go through the rate limiter and need no session; logout and the
// profile endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, gate middleware.Authenticator, limiter echo.MiddlewareFunc) {
	jwt := middleware.JWTAuth(gate)

	g := e.Group("/api/auth")
	g.POST("/signup", a.Signup, limiter)
	g.POST("/login", a.Login, limiter)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh, limiter)
	// Revokes the refresh token in the body, or all of the caller's tokens.
	g.POST("/logout", a.Logout, jwt)
	g.GET("/me", u.Me, jwt)

	e.GET("/api/users/me", u.Me, jwt)
}

// RegisterPublic registers unauthenticated catalogue reads.  cache is
// applied per route; the seat map is excluded from caching by the cache
// configuration since it changes with every booking.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.GET("/cinemas", h.ListCinemas, cache)
	g.GET("/cinemas/:id", h.GetCinema, cache)

	// Optional ?cinema_id filter.
	g.GET("/screens", h.ListScreens, cache)
	g.GET("/screens/:id", h.GetScreen, cache)

	g.GET("/movies", h.ListMovies, cache)
	g.GET("/movies/:id", h.GetMovie, cache)

	// Optional ?movie_id and ?screen_id filters.
	g.GET("/shows", h.ListShows, cache)
	g.GET("/shows/:id", h.GetShow, cache)
	g.GET("/shows/:id/seats", h.SeatMap, cache)
}
