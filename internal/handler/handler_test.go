package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-booking/internal/auth"
	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/testutil"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

const secret = "test-secret"

type server struct {
	e   *echo.Echo
	db  *sql.DB
	cat testutil.Catalog
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer(t *testing.T) server {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost}

	users := repository.NewUserRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	gate := auth.NewGate(secret, users)
	catalog := handler.NewCatalogHandler(
		repository.NewCinemaRepo(db), repository.NewScreenRepo(db), repository.NewMovieRepo(db), shows, bookings)
	userH := handler.NewUserHandler(users)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)), userH, gate, passthrough)
	router.RegisterPublic(e, catalog, passthrough)
	router.RegisterAdmin(e, catalog, userH, gate, passthrough)
	router.RegisterBooking(e, handler.NewBookingHandler(booking.NewService(db, shows, bookings, nil, nil)), gate, passthrough)
	return server{e: e, db: db, cat: testutil.NewCatalog(t, db)}
}

// login creates a user directly in the database and returns an access token.
func (s server) login(t *testing.T, name string, admin bool) (uint64, string) {
	t.Helper()
	id := testutil.User(t, s.db, name, strings.ToLower(name)+"@example.com", admin)
	role := utils.RoleUser
	if admin {
		role = utils.RoleAdmin
	}
	tok, err := utils.NewAccessToken(secret, id, role, 15)
	require.NoError(t, err)
	return id, tok.Token
}

func (s server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(bs)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, rec)
	kind, _ := body["error"].(string)
	return kind
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ann", "email": "Ann@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "ann@example.com", created["email"])
	assert.Equal(t, false, created["is_admin"])
	assert.NotContains(t, created, "password_hash")

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Other", "email": "ann@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorKind(t, rec))

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[map[string]any](t, rec)
	assert.Equal(t, "bearer", pair["token_type"])
	access, _ := pair["access_token"].(string)
	refresh, _ := pair["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	rec = s.do(t, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", decode[map[string]any](t, rec)["name"])
	rec = s.do(t, http.MethodGet, "/api/users/me", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Refresh rotates: the old token stops working.
	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated, _ := decode[map[string]any](t, rec)["refresh_token"].(string)
	assert.NotEqual(t, refresh, rotated)
	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", access, map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_FormUsername(t *testing.T) {
	s := newServer(t)
	_, err := repository.NewUserRepo(s.db).Create(
		context.Background(), "Bob", "bob@example.com", "secret1", false, bcrypt.MinCost)
	require.NoError(t, err)

	form := url.Values{"username": {"bob@example.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLogout_RevokesAllWithoutBody(t *testing.T) {
	s := newServer(t)
	_, err := repository.NewUserRepo(s.db).Create(
		context.Background(), "Cy", "cy@example.com", "secret1", false, bcrypt.MinCost)
	require.NoError(t, err)

	var refreshes []string
	var access string
	for n := 0; n < 2; n++ {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "cy@example.com", "password": "secret1"})
		require.Equal(t, http.StatusOK, rec.Code)
		pair := decode[map[string]string](t, rec)
		refreshes = append(refreshes, pair["refresh_token"])
		access = pair["access_token"]
	}

	rec := s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, r := range refreshes {
		rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": r})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestCatalog_AdminGate(t *testing.T) {
	s := newServer(t)
	_, user := s.login(t, "Ann", false)
	_, admin := s.login(t, "Root", true)
	body := map[string]string{"name": "Rex", "location": "Harbour"}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/cinemas", "", body).Code)
	rec := s.do(t, http.MethodPost, "/api/cinemas", user, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_error", errorKind(t, rec))

	rec = s.do(t, http.MethodPost, "/api/cinemas", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := uint64(decode[map[string]any](t, rec)["id"].(float64))

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/cinemas/%d", id), admin, map[string]string{"location": "Pier 4"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Rex", got["name"])
	assert.Equal(t, "Pier 4", got["location"])

	rec = s.do(t, http.MethodGet, "/api/cinemas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/cinemas/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/cinemas/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog_ScreensMoviesShows(t *testing.T) {
	s := newServer(t)
	_, admin := s.login(t, "Root", true)

	rec := s.do(t, http.MethodPost, "/api/screens", admin, map[string]any{"cinema_id": 999, "name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/screens", admin, map[string]any{"cinema_id": s.cat.CinemaID, "name": "Screen 1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/screens", admin, map[string]any{"cinema_id": s.cat.CinemaID, "name": "Screen 2"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/screens?cinema_id=%d", s.cat.CinemaID), "", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodPost, "/api/movies", admin, map[string]any{"title": "Ronin", "duration": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/movies", admin, map[string]any{"title": "Ronin", "description": "Heist", "duration": 122})
	require.Equal(t, http.StatusCreated, rec.Code)
	movieID := uint64(decode[map[string]any](t, rec)["id"].(float64))

	show := map[string]any{"movie_id": movieID, "screen_id": s.cat.ScreenID, "start_time": "2030-01-01T20:00:00Z"}
	rec = s.do(t, http.MethodPost, "/api/shows", admin, show)
	assert.Equal(t, http.StatusConflict, rec.Code, "screen already has a show at that time")

	show["start_time"] = "tomorrow"
	rec = s.do(t, http.MethodPost, "/api/shows", admin, show)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	show["start_time"] = "2030-01-02T01:30:00+02:00"
	show["movie_id"] = 999
	rec = s.do(t, http.MethodPost, "/api/shows", admin, show)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	show["movie_id"] = movieID
	rec = s.do(t, http.MethodPost, "/api/shows", admin, show)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2030-01-01T23:30:00Z", decode[map[string]any](t, rec)["start_time"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows?movie_id=%d", movieID), "", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows?screen_id=%d", s.cat.ScreenID), "", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	// Deleting the movie takes its show with it.
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/movies/%d", movieID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows?movie_id=%d", movieID), "", nil)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestBookingFlow(t *testing.T) {
	s := newServer(t)
	_, alice := s.login(t, "Alice", false)
	_, bob := s.login(t, "Bob", false)
	_, admin := s.login(t, "Root", true)
	seats := func(pairs ...int) []map[string]int {
		out := []map[string]int{}
		for i := 0; i+1 < len(pairs); i += 2 {
			out = append(out, map[string]int{"row": pairs[i], "col": pairs[i+1]})
		}
		return out
	}

	rec := s.do(t, http.MethodPost, "/api/bookings", "", map[string]any{"show_id": s.cat.ShowID, "seats": seats(0, 0)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/bookings", alice, map[string]any{"show_id": s.cat.ShowID, "seats": seats(0, 0, 0, 1)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[map[string]any](t, rec)
	assert.Len(t, first["seats"], 2)
	bookingID := uint64(first["id"].(float64))

	rec = s.do(t, http.MethodPost, "/api/bookings", bob, map[string]any{"show_id": s.cat.ShowID, "seats": seats(0, 1, 0, 2)})
	require.Equal(t, http.StatusConflict, rec.Code)
	conflict := decode[map[string]any](t, rec)
	assert.Equal(t, "conflict", conflict["error"])
	assert.Equal(t, []any{map[string]any{"row": float64(0), "col": float64(1)}}, conflict["seats"])

	for name, req := range map[string]map[string]any{
		"out of range": {"show_id": s.cat.ShowID, "seats": seats(10, 0)},
		"duplicate":    {"show_id": s.cat.ShowID, "seats": seats(1, 1, 1, 1)},
		"too many":     {"show_id": s.cat.ShowID, "seats": seats(1, 0, 1, 1, 1, 2, 1, 3, 1, 4, 1, 5, 1, 6)},
		"empty":        {"show_id": s.cat.ShowID, "seats": seats()},
		"no show":      {"seats": seats(1, 1)},
		"missing row":  {"show_id": s.cat.ShowID, "seats": []map[string]int{{"col": 3}}},
		"missing col":  {"show_id": s.cat.ShowID, "seats": []map[string]int{{"row": 3}}},
		"partial seat": {"show_id": s.cat.ShowID, "seats": []map[string]int{{"row": 2, "col": 2}, {"col": 4}}},
		"no seats":     {"show_id": s.cat.ShowID},
		"null seats":   {"show_id": s.cat.ShowID, "seats": nil},
	} {
		rec = s.do(t, http.MethodPost, "/api/bookings", bob, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "validation_error", errorKind(t, rec), name)
	}
	rec = s.do(t, http.MethodGet, "/api/bookings/me", bob, nil)
	assert.Empty(t, decode[[]map[string]any](t, rec), "rejected requests must not book")
	rec = s.do(t, http.MethodPost, "/api/bookings", bob, map[string]any{"show_id": 999, "seats": seats(1, 1)})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows/%d/seats", s.cat.ShowID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	seatMap := decode[map[string]any](t, rec)
	assert.Equal(t, float64(10), seatMap["rows"])
	assert.Equal(t, float64(98), seatMap["available"])
	assert.Len(t, seatMap["booked"], 2)

	rec = s.do(t, http.MethodGet, "/api/bookings/me", alice, nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = s.do(t, http.MethodGet, "/api/bookings/me", bob, nil)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows/%d/bookings", s.cat.ShowID), alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows/%d/bookings", s.cat.ShowID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, map[string]any{"name": "Alice", "email": "alice@example.com"}, list[0]["user"])

	path := fmt.Sprintf("/api/bookings/%d", bookingID)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, alice, nil).Code)

	rec = s.do(t, http.MethodPost, "/api/bookings", bob, map[string]any{"show_id": s.cat.ShowID, "seats": seats(0, 1, 0, 2)})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	s := newServer(t)
	aliceID, alice := s.login(t, "Alice", false)
	_, admin := s.login(t, "Root", true)

	rec := s.do(t, http.MethodPost, "/api/bookings", alice, map[string]any{
		"show_id": s.cat.ShowID, "seats": []map[string]int{{"row": 4, "col": 4}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	path := fmt.Sprintf("/api/users/%d", aliceID)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, alice, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, admin, nil).Code)

	// The deleted user's token no longer authenticates and the seat is free.
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/bookings/me", alice, nil).Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/shows/%d/seats", s.cat.ShowID), "", nil)
	assert.Empty(t, decode[map[string]any](t, rec)["booked"])
}
