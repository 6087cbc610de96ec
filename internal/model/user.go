package model

import "time"

// User is a row of `users`.  Email is stored lower-cased and is unique;
// PasswordHash is a bcrypt hash.  Admins may write the catalogue and
// delete users.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    IsAdmin      bool      // users.is_admin
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
