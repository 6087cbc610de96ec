package model

import "time"

// Cinema is a venue; its screens live in `screens` and are removed with it.
type Cinema struct {
    ID        uint64    // cinemas.id
    Name      string    // cinemas.name
    Location  string    // cinemas.location
    CreatedAt time.Time // cinemas.created_at
    UpdatedAt time.Time // cinemas.updated_at
}
