package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/cinema-booking/internal/apperror"
    "github.com/iliyamo/cinema-booking/internal/model"
)

// Authenticator resolves a raw bearer token to a user.
type Authenticator interface {
    Authenticate(ctx context.Context, raw string) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the resolved user in the request context.  Handlers read it
// back with CurrentUser.
func JWTAuth(gate Authenticator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            raw := ""
            if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
                raw = strings.TrimSpace(auth[7:])
            }
            user, err := gate.Authenticate(c.Request().Context(), raw)
            if err != nil {
                return WriteError(c, err)
            }
            setUser(c, user)
            return next(c)
        }
    }
}

// ctxErrorKey holds the cause of an internal error for RequestLogger.
const ctxErrorKey = "error_cause"

// WriteError renders err with the status matching its kind.  Internal
// causes are kept on the context for the request log and never sent.
func WriteError(c echo.Context, err error) error {
    if apperror.Is(err, apperror.KindInternal) {
        c.Set(ctxErrorKey, err)
    }
    if apperror.Is(err, apperror.KindAuthentication) {
        c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
    }
    return c.JSON(apperror.HTTPStatus(apperror.KindOf(err)), apperror.Body(err))
}
