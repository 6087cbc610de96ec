package middleware

// identity.go holds the helpers that move the authenticated user in and
// out of the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/model"
)

const (
    ctxUserKey   = "user"
    ctxUserIDKey = "user_id"
)

func setUser(c echo.Context, u model.User) {
    c.Set(ctxUserKey, u)
    c.Set(ctxUserIDKey, strconv.FormatUint(u.ID, 10))
}

// CurrentUser returns the user stored by JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(ctxUserKey).(model.User)
    return u, ok
}

// userID returns the authenticated user's id, or "guest" when the request
// is anonymous.
func userID(c echo.Context) string {
    if s, ok := c.Get(ctxUserIDKey).(string); ok && s != "" {
        return s
    }
    return "guest"
}
