package handler

import (
	"errors"
	"net/http" // HTTP status codes and primitives
	"net/mail"
	"strings" // string manipulation utilities
	"time"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/config"     // app configuration
	"github.com/iliyamo/cinema-booking/internal/model"      // domain records
	"github.com/iliyamo/cinema-booking/internal/repository" // DB repositories
	"github.com/iliyamo/cinema-booking/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// loginReq accepts the email either as "email" or as the OAuth2 password
// flow "username" field, from JSON or a form body.
type loginReq struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenResp struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Signup creates a regular (non-admin) user.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = repository.NormalizeEmail(req.Email)
	switch {
	case req.Name == "":
		return respondError(c, apperror.Validation("name is required"))
	case !validEmail(req.Email):
		return respondError(c, apperror.Validation("a valid email is required"))
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return respondError(c, apperror.Validation(err.Error()))
	}

	u, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, req.Password, false, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserOut(u))
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}
	email = repository.NormalizeEmail(email)
	if email == "" || req.Password == "" {
		return respondError(c, apperror.Validation("email/password required"))
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, apperror.Authentication("invalid credentials"))
		}
		return respondError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondError(c, apperror.Authentication("invalid credentials"))
	}
	return h.issue(c, u, "")
}

// Refresh: validate by hash, then swap the old token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondError(c, apperror.Validation("refresh_token required"))
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	ctx := c.Request().Context()

	userID, err := h.Tokens.Validate(ctx, hash)
	if err != nil {
		return respondError(c, refreshError(err))
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, apperror.Authentication("invalid refresh token"))
		}
		return respondError(c, err)
	}
	return h.issue(c, u, hash)
}

// Logout revokes the refresh token in the body, or every refresh token of
// the caller when none is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req refreshReq
	_ = c.Bind(&req) // an empty body means "all sessions"
	ctx := c.Request().Context()

	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	hash := utils.HashRefreshRaw(raw)
	owner, err := h.Tokens.Validate(ctx, hash)
	if err != nil {
		return respondError(c, refreshError(err))
	}
	if owner != u.ID {
		return respondError(c, apperror.Authentication("invalid refresh token"))
	}
	if err := h.Tokens.Revoke(ctx, hash); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// issue returns a new token pair for u.  When rotate is set, that refresh
// token hash is revoked in the same transaction that stores the new one.
func (h *AuthHandler) issue(c echo.Context, u model.User, rotate string) error {
	role := utils.RoleUser
	if u.IsAdmin {
		role = utils.RoleAdmin
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, apperror.Internal("issue access token", err))
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return respondError(c, apperror.Internal("issue refresh token", err))
	}
	ctx := c.Request().Context()
	newHash := utils.HashRefreshRaw(refresh.Raw)
	if rotate != "" {
		_, err = h.Tokens.Rotate(ctx, rotate, newHash, refresh.Exp)
	} else {
		err = h.Tokens.Store(ctx, u.ID, newHash, refresh.Exp)
	}
	if err != nil {
		return respondError(c, refreshError(err))
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:      access.Token,
		TokenType:        "bearer",
		ExpiresAt:        access.Exp,
		RefreshToken:     refresh.Raw, // raw back to client
		RefreshExpiresAt: refresh.Exp,
	})
}

// refreshError hides why a refresh token was refused.
func refreshError(err error) error {
	if errors.Is(err, repository.ErrTokenInvalid) {
		return apperror.Authentication("invalid refresh token")
	}
	return apperror.Internal("refresh token store", err)
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
