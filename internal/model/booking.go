package model

import "time"

// Booking is the immutable per-seat sale ledger row.  One row is written
// per seat at confirmation time; seats sold in the same request share a
// GroupRef so the whole group can be cancelled together.  Rows are never
// deleted – only the status, reason and print counter ever change.
//
// Fields:
//  ID           – primary key identifier.
//  PublicID     – opaque identifier printed on the ticket.
//  GroupRef     – shared reference across seats sold in one request.
//  ShowPublicID – show identity snapshot.
//  SeatPublicID – seat identity snapshot.
//  SeatLabel    – seat label snapshot for reprints.
//  PriceCents   – base price at sale time.
//  VATCents     – VAT computed from the base price.
//  TotalCents   – PriceCents + VATCents.
//  PaymentMode  – CASH or POS.
//  Status       – ISSUED, CANCELLED or REFUNDED.
//  Reason       – operator-supplied reason for cancel/refund.
//  BookedBy     – acting user at the counter.
//  BookedAt     – sale timestamp.
//  PrintCount   – number of times the ticket was printed.
type Booking struct {
	ID           uint64        // bookings.id
	PublicID     string        // bookings.public_id
	GroupRef     string        // bookings.group_ref
	ShowPublicID string        // bookings.show_public_id
	SeatPublicID string        // bookings.seat_public_id
	SeatLabel    string        // bookings.seat_label
	PriceCents   uint32        // bookings.price_cents
	VATCents     uint32        // bookings.vat_cents
	TotalCents   uint32        // bookings.total_cents
	PaymentMode  PaymentMode   // bookings.payment_mode
	Status       BookingStatus // bookings.status
	Reason       *string       // bookings.reason (nullable)
	BookedBy     string        // bookings.booked_by
	BookedAt     time.Time     // bookings.booked_at
	PrintCount   uint32        // bookings.print_count
	CreatedAt    time.Time     // bookings.created_at
	UpdatedAt    time.Time     // bookings.updated_at
}
