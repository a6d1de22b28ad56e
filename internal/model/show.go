package model

import "time"

// Show represents one scheduled screening of a movie on a screen.  Its
// time window is derived at scheduling time: EndsAt is the movie runtime
// plus a fixed turnaround buffer, never supplied by the caller.  The
// status advances monotonically with wall-clock time (see ShowStatus).
//
// Fields:
//  ID        – primary key identifier.
//  PublicID  – opaque identifier exposed to POS terminals.
//  MovieID   – movie being screened.
//  ScreenID  – screen the show runs on.
//  StartsAt  – when the show begins.
//  EndsAt    – when the screen is free again (runtime + buffer).
//  Status    – current lifecycle state.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Show struct {
	ID        uint64     // shows.id
	PublicID  string     // shows.public_id
	MovieID   uint64     // shows.movie_id
	ScreenID  uint64     // shows.screen_id
	StartsAt  time.Time  // shows.starts_at
	EndsAt    time.Time  // shows.ends_at
	Status    ShowStatus // shows.status
	CreatedAt time.Time  // shows.created_at
	UpdatedAt time.Time  // shows.updated_at
}
