package model

import "time"

// Show represents a scheduled screening of a movie on a screen.  At
// most one show may exist per (screen, start time) pair; the storage
// layer enforces this with a unique index.  Deleting a show removes
// all of its bookings.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  ScreenID  – screen where the show takes place.
//  StartTime – when the show begins (UTC, second precision).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Show struct {
    ID        uint64    // shows.id
    MovieID   uint64    // shows.movie_id
    ScreenID  uint64    // shows.screen_id
    StartTime time.Time // shows.start_time
    CreatedAt time.Time // shows.created_at
    UpdatedAt time.Time // shows.updated_at
}
