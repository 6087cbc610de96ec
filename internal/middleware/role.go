package middleware // middleware provides shared request processing for handlers

import (
    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/cinema-booking/internal/apperror"
    "github.com/iliyamo/cinema-booking/internal/auth"
)

// RequireAdmin aborts with 403 unless the authenticated user is an
// administrator.  It must run after JWTAuth; without a user in context
// the request is rejected with 401.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u, ok := CurrentUser(c)
            if !ok {
                return WriteError(c, apperror.Authentication("missing bearer token"))
            }
            if err := auth.AuthorizeAdmin(u); err != nil {
                return WriteError(c, err)
            }
            return next(c)
        }
    }
}
