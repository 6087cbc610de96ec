// Package auth resolves bearer tokens to users and guards administrative
// operations.
package auth

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-booking/internal/apperror"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

// UserLookup loads users by id.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Gate verifies access tokens signed with secret.
type Gate struct {
	secret string
	users  UserLookup
}

func NewGate(secret string, users UserLookup) *Gate {
	return &Gate{secret: secret, users: users}
}

// Authenticate verifies raw and returns the user named by its subject.
// Malformed, expired or foreign tokens and deleted users all fail with an
// authentication error.
func (g *Gate) Authenticate(ctx context.Context, raw string) (model.User, error) {
	if raw == "" {
		return model.User{}, apperror.Authentication("missing bearer token")
	}
	id, err := utils.ParseAccessToken(g.secret, raw)
	if err != nil {
		return model.User{}, apperror.Authentication("invalid token")
	}
	u, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperror.Authentication("user no longer exists")
		}
		return model.User{}, apperror.Internal("load user", err)
	}
	return u, nil
}

// AuthorizeAdmin fails unless u carries the administrative flag.
func AuthorizeAdmin(u model.User) error {
	if !u.IsAdmin {
		return apperror.Authorization("admin privileges required")
	}
	return nil
}
