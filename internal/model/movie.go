package model

import "time"

// Movie is a film that can be scheduled on screens.  Duration is
// expressed in minutes.
type Movie struct {
    ID          uint64    // movies.id
    Title       string    // movies.title
    Description string    // movies.description
    Duration    int       // movies.duration (minutes)
    CreatedAt   time.Time // movies.created_at
    UpdatedAt   time.Time // movies.updated_at
}
