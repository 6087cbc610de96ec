package handler // handler package contains the HTTP handlers of the API

import (
    "errors"
    "strconv" // strconv parses string identifiers to numeric types
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/apperror"
    "github.com/iliyamo/cinema-booking/internal/middleware"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

// respondError translates repository sentinels into error kinds and writes
// the {"error": kind, "detail": ...} body with the matching status.
func respondError(c echo.Context, err error) error {
    var ae *apperror.Error
    switch {
    case errors.As(err, &ae):
    case errors.Is(err, repository.ErrEmailExists):
        err = apperror.Conflict("email already exists")
    case errors.Is(err, repository.ErrDuplicate):
        err = apperror.Conflict("resource already exists")
    case errors.Is(err, repository.ErrNotFound):
        err = apperror.NotFound(err.Error())
    default:
        err = apperror.Internal("unexpected error", err)
    }
    return middleware.WriteError(c, err)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, apperror.Validation("invalid " + name)
    }
    return id, nil
}

// queryID reads an optional positive numeric query parameter.
func queryID(c echo.Context, name string) (*uint64, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, nil
    }
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || id == 0 {
        return nil, apperror.Validation("invalid " + name)
    }
    return &id, nil
}

// bind decodes the request body or fails with a validation error.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return apperror.Validation("invalid request body")
    }
    return nil
}

// currentUser returns the authenticated user or an authentication error.
func currentUser(c echo.Context) (model.User, error) {
    u, ok := middleware.CurrentUser(c)
    if !ok {
        return model.User{}, apperror.Authentication("missing bearer token")
    }
    return u, nil
}

// ----- response DTOs -----

type userOut struct {
    ID      uint64 `json:"id"`
    Name    string `json:"name"`
    Email   string `json:"email"`
    IsAdmin bool   `json:"is_admin"`
}

func toUserOut(u model.User) userOut {
    return userOut{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

type cinemaOut struct {
    ID       uint64 `json:"id"`
    Name     string `json:"name"`
    Location string `json:"location"`
}

func toCinemaOut(c model.Cinema) cinemaOut {
    return cinemaOut{ID: c.ID, Name: c.Name, Location: c.Location}
}

type screenOut struct {
    ID       uint64 `json:"id"`
    CinemaID uint64 `json:"cinema_id"`
    Name     string `json:"name"`
}

func toScreenOut(s model.Screen) screenOut {
    return screenOut{ID: s.ID, CinemaID: s.CinemaID, Name: s.Name}
}

type movieOut struct {
    ID          uint64 `json:"id"`
    Title       string `json:"title"`
    Description string `json:"description"`
    Duration    int    `json:"duration"`
}

func toMovieOut(m model.Movie) movieOut {
    return movieOut{ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration}
}

type showOut struct {
    ID        uint64    `json:"id"`
    MovieID   uint64    `json:"movie_id"`
    ScreenID  uint64    `json:"screen_id"`
    StartTime time.Time `json:"start_time"`
}

func toShowOut(s model.Show) showOut {
    return showOut{ID: s.ID, MovieID: s.MovieID, ScreenID: s.ScreenID, StartTime: s.StartTime.UTC()}
}

type bookingOut struct {
    ID        uint64       `json:"id"`
    UserID    uint64       `json:"user_id"`
    ShowID    uint64       `json:"show_id"`
    Seats     []model.Seat `json:"seats"`
    CreatedAt time.Time    `json:"created_at"`
}

func toBookingOut(b model.Booking) bookingOut {
    seats := b.Seats
    if seats == nil {
        seats = []model.Seat{}
    }
    return bookingOut{ID: b.ID, UserID: b.UserID, ShowID: b.ShowID, Seats: seats, CreatedAt: b.CreatedAt.UTC()}
}

// mapSlice converts a slice with f, never returning nil so empty lists
// encode as [].
func mapSlice[T, R any](in []T, f func(T) R) []R {
    out := make([]R, 0, len(in))
    for _, v := range in {
        out = append(out, f(v))
    }
    return out
}
