package model

import "time"

// RefreshToken is a row of `refresh_tokens`.  Only the SHA-256 hex digest
// of the token handed to the client is kept.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at, nil while usable
    CreatedAt time.Time  // refresh_tokens.created_at
}

// Active reports whether the token can still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
    return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
