// Package queue defines the domain events broadcast to POS terminals and
// the RabbitMQ dispatcher that delivers them.  Events are emitted only
// after the originating database transaction has committed; delivery
// ordering and retry are the transport's responsibility.
package queue

import "time"

// Event type names as they appear on the wire.
const (
	TypeSeatHeld         = "SEAT_HELD"
	TypeSeatReleased     = "SEAT_RELEASED"
	TypeSeatSold         = "SEAT_SOLD"
	TypeBookingConfirmed = "BOOKING_CONFIRMED"
	TypeShowCreated      = "SHOW_CREATED"
	TypeShowStatusUpdate = "SHOW_STATUS_UPDATE"
	TypeShowCancelled    = "SHOW_CANCELLED"
)

// Event is the envelope every broadcast message shares.  Type and
// OccurredAt are always set; the remaining fields are populated per
// event type and omitted from the JSON payload otherwise.
type Event struct {
	Type          string   `json:"type"`
	OccurredAt    string   `json:"occurred_at"`
	ShowPublicID  string   `json:"show_public_id,omitempty"`
	SeatPublicID  string   `json:"seat_public_id,omitempty"`
	SeatState     string   `json:"seat_state,omitempty"`
	ShowStatus    string   `json:"show_status,omitempty"`
	HeldBy        string   `json:"held_by,omitempty"`
	ExpiresAt     string   `json:"expires_at,omitempty"`
	GroupRef      string   `json:"group_ref,omitempty"`
	SeatPublicIDs []string `json:"seat_public_ids,omitempty"`
	SeatCount     int      `json:"seat_count,omitempty"`
	TotalCents    uint32   `json:"total_cents,omitempty"`
	PaymentMode   string   `json:"payment_mode,omitempty"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// SeatHeld reports a seat moving to HELD with its expiry.
func SeatHeld(showPublicID, seatPublicID, heldBy string, expiresAt, at time.Time) Event {
	return Event{
		Type:         TypeSeatHeld,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		SeatPublicID: seatPublicID,
		SeatState:    "HELD",
		HeldBy:       heldBy,
		ExpiresAt:    stamp(expiresAt),
	}
}

// SeatReleased reports a seat returning to AVAILABLE, whether by explicit
// release, disconnect cleanup, expiry sweep or booking cancellation.
func SeatReleased(showPublicID, seatPublicID string, at time.Time) Event {
	return Event{
		Type:         TypeSeatReleased,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		SeatPublicID: seatPublicID,
		SeatState:    "AVAILABLE",
	}
}

// SeatSold reports a seat confirmed into SOLD.
func SeatSold(showPublicID, seatPublicID string, at time.Time) Event {
	return Event{
		Type:         TypeSeatSold,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		SeatPublicID: seatPublicID,
		SeatState:    "SOLD",
	}
}

// BookingConfirmed aggregates one completed sale across all its seats.
func BookingConfirmed(showPublicID, groupRef string, seatPublicIDs []string, totalCents uint32, paymentMode string, at time.Time) Event {
	return Event{
		Type:          TypeBookingConfirmed,
		OccurredAt:    stamp(at),
		ShowPublicID:  showPublicID,
		GroupRef:      groupRef,
		SeatPublicIDs: seatPublicIDs,
		SeatCount:     len(seatPublicIDs),
		TotalCents:    totalCents,
		PaymentMode:   paymentMode,
	}
}

// ShowCreated reports a newly scheduled show.
func ShowCreated(showPublicID string, at time.Time) Event {
	return Event{
		Type:         TypeShowCreated,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		ShowStatus:   "SCHEDULED",
	}
}

// ShowStatusUpdate reports a lifecycle transition applied by the
// scheduler.
func ShowStatusUpdate(showPublicID, status string, at time.Time) Event {
	return Event{
		Type:         TypeShowStatusUpdate,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		ShowStatus:   status,
	}
}

// ShowCancelled reports a show withdrawn before running.
func ShowCancelled(showPublicID string, at time.Time) Event {
	return Event{
		Type:         TypeShowCancelled,
		OccurredAt:   stamp(at),
		ShowPublicID: showPublicID,
		ShowStatus:   "CANCELLED",
	}
}
