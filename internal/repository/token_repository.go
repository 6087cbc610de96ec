package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// TokenRepo persists refresh tokens.  Only the SHA-256 hash of a token is
// stored; callers hash the raw value with utils.HashRefreshRaw.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

func (r *TokenRepo) insert(ctx context.Context, q queryer, userID uint64, tokenHash string, exp time.Time) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		userID, tokenHash, exp.UTC(), time.Now().UTC())
	return err
}

// Store saves a newly issued refresh token.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return r.insert(ctx, r.DB, userID, tokenHash, exp)
}

func lookupToken(ctx context.Context, q queryer, tokenHash string) (model.RefreshToken, error) {
	var (
		t       model.RefreshToken
		revoked sql.NullTime
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash = ?",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
	if err != nil {
		return model.RefreshToken{}, notFound(err, ErrTokenInvalid)
	}
	if revoked.Valid {
		t.RevokedAt = &revoked.Time
	}
	return t, nil
}

// Validate returns the owner of an active token, or ErrTokenInvalid.
func (r *TokenRepo) Validate(ctx context.Context, tokenHash string) (uint64, error) {
	t, err := lookupToken(ctx, r.DB, tokenHash)
	if err != nil {
		return 0, err
	}
	if !t.Active(time.Now().UTC()) {
		return 0, ErrTokenInvalid
	}
	return t.UserID, nil
}

// Rotate revokes oldHash and stores newHash for the same user in one
// transaction.  Of two concurrent rotations of the same token only one
// succeeds; the other gets ErrTokenInvalid.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	var userID uint64
	err := database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		t, err := lookupToken(ctx, tx, oldHash)
		if err != nil {
			return err
		}
		if !t.Active(now) {
			return ErrTokenInvalid
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE refresh_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL", now, t.ID)
		if err != nil {
			return err
		}
		if err := affected(res, ErrTokenInvalid); err != nil {
			return err
		}
		userID = t.UserID
		return r.insert(ctx, tx, t.UserID, newHash, exp)
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Revoke marks a token as revoked.  Revoking twice is not an error.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL",
		time.Now().UTC(), tokenHash)
	return err
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		time.Now().UTC(), userID)
	return err
}

// PurgeExpired deletes tokens that expired before cutoff and returns how
// many were removed.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
