package model

import "time"

// ShowSeat is the per-show materialization of a screen seat.  One row is
// bulk-created for every active screen seat when the show is scheduled,
// carrying a snapshot of the seat's layout metadata and the price assigned
// to its seat type.  Later edits to the screen or its price list never
// touch existing show seats.
//
// The reservation columns double as the source of truth for holds: a HELD
// seat always has ReservedBy, ReservedSession, ReservedAt and ExpiresAt
// set, an AVAILABLE seat has all of them cleared, and a SOLD seat has them
// cleared with ConfirmedBookingID pointing at the booking that sold it.
//
// Fields:
//  ID                 – primary key identifier.
//  ShowID             – show this seat belongs to.
//  SeatPublicID       – public identifier of the source screen seat.
//  Label              – human-readable seat label, e.g. "C7".
//  RowIndex, ColIndex – position in the seating grid.
//  SeatType           – seat type snapshot (STANDARD, VIP, ...).
//  MetaJSON           – opaque layout metadata copied verbatim.
//  PriceCents         – price snapshot for this seat.
//  State              – AVAILABLE, HELD or SOLD.
//  ReservedBy         – user holding the seat (nil unless HELD).
//  ReservedSession    – terminal session that placed the hold.
//  ReservedAt         – when the hold was placed.
//  ExpiresAt          – ReservedAt plus the fixed hold TTL.
//  ConfirmedBookingID – booking that sold this seat (nil unless SOLD).
type ShowSeat struct {
	ID                 uint64     // show_seats.id
	ShowID             uint64     // show_seats.show_id
	SeatPublicID       string     // show_seats.seat_public_id
	Label              string     // show_seats.label
	RowIndex           uint32     // show_seats.row_index
	ColIndex           uint32     // show_seats.col_index
	SeatType           string     // show_seats.seat_type
	MetaJSON           *string    // show_seats.meta_json (nullable)
	PriceCents         uint32     // show_seats.price_cents
	State              SeatState  // show_seats.state
	ReservedBy         *string    // show_seats.reserved_by (nullable)
	ReservedSession    *string    // show_seats.reserved_session (nullable)
	ReservedAt         *time.Time // show_seats.reserved_at (nullable)
	ExpiresAt          *time.Time // show_seats.expires_at (nullable)
	ConfirmedBookingID *uint64    // show_seats.confirmed_booking_id (nullable)
	CreatedAt          time.Time  // show_seats.created_at
	UpdatedAt          time.Time  // show_seats.updated_at
}

// HeldSeat pairs a held show seat with its show's public identifier.
// The sweep and disconnect-cleanup queries return it so event payloads
// can be built without a second lookup.
type HeldSeat struct {
	ShowSeat
	ShowPublicID string
}

// HeldBy reports whether the seat is currently held by the given user.
func (s *ShowSeat) HeldBy(user string) bool {
	return s.State == SeatHeld && s.ReservedBy != nil && *s.ReservedBy == user
}

// HoldExpired reports whether the seat carries a hold that has lapsed at
// the given instant.  A seat without an expiry is never expired.
func (s *ShowSeat) HoldExpired(now time.Time) bool {
	return s.State == SeatHeld && s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
