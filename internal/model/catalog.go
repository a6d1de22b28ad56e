package model

import "time"

// The movie and screen catalogs are maintained by an external system;
// this backend only reads them, and only at scheduling time.  The types
// below model the read side of that boundary.

// Movie carries the catalog attributes scheduling needs: the runtime used
// to derive a show's end time and the active flag gating new shows.
type Movie struct {
	ID          uint64    // movies.id
	PublicID    string    // movies.public_id
	Title       string    // movies.title
	DurationMin uint32    // movies.duration_min
	IsActive    bool      // movies.is_active
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}

// Screen is an auditorium.  Its seat template is read once per show to
// materialize the show's seat inventory.
type Screen struct {
	ID        uint64    // screens.id
	PublicID  string    // screens.public_id
	Name      string    // screens.name
	IsActive  bool      // screens.is_active
	CreatedAt time.Time // screens.created_at
	UpdatedAt time.Time // screens.updated_at
}

// ScreenSeat is one seat in a screen's template.  MetaJSON is an opaque
// blob owned by the layout editor; it is copied verbatim onto show seats
// and never interpreted here.
type ScreenSeat struct {
	ID       uint64  // screen_seats.id
	ScreenID uint64  // screen_seats.screen_id
	PublicID string  // screen_seats.public_id
	Label    string  // screen_seats.label
	RowIndex uint32  // screen_seats.row_index
	ColIndex uint32  // screen_seats.col_index
	SeatType string  // screen_seats.seat_type
	MetaJSON *string // screen_seats.meta_json (nullable)
	IsActive bool    // screen_seats.is_active
}
