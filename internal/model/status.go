package model

// This file defines the closed status sets used across the booking core.
// Statuses are stored as strings in the database but business logic only
// ever works with these typed values; conversion from raw column values
// happens at the repository boundary.

// ShowStatus is the lifecycle state of a show.
type ShowStatus string

const (
	ShowScheduled ShowStatus = "SCHEDULED" // created, not yet started
	ShowRunning   ShowStatus = "RUNNING"   // wall clock has passed starts_at
	ShowCompleted ShowStatus = "COMPLETED" // wall clock has passed ends_at
	ShowCancelled ShowStatus = "CANCELLED" // withdrawn before it ran
)

// showTransitions defines the allowed show status transitions.  The key is
// the current status; the value lists the statuses it may move to.  An
// empty list marks a terminal status.
var showTransitions = map[ShowStatus][]ShowStatus{
	ShowScheduled: {ShowRunning, ShowCancelled},
	ShowRunning:   {ShowCompleted},
	ShowCompleted: {},
	ShowCancelled: {},
}

// IsValid reports whether s is a known show status.
func (s ShowStatus) IsValid() bool {
	_, ok := showTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s ShowStatus) CanTransitionTo(target ShowStatus) bool {
	for _, allowed := range showTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Bookable reports whether seats on a show in this status may still be
// held or sold.
func (s ShowStatus) Bookable() bool {
	return s == ShowScheduled || s == ShowRunning
}

// SeatState is the availability state of a single show seat.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE" // free to hold
	SeatHeld      SeatState = "HELD"      // temporarily reserved, expires
	SeatSold      SeatState = "SOLD"      // confirmed by a booking
)

// seatTransitions mirrors the seat state machine: a hold moves a seat to
// HELD, from where it is either released (expiry, disconnect, explicit
// release) or confirmed into SOLD.  Cancelling or refunding the booking
// releases a SOLD seat back to AVAILABLE.
var seatTransitions = map[SeatState][]SeatState{
	SeatAvailable: {SeatHeld},
	SeatHeld:      {SeatAvailable, SeatSold},
	SeatSold:      {SeatAvailable},
}

// IsValid reports whether s is a known seat state.
func (s SeatState) IsValid() bool {
	_, ok := seatTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s SeatState) CanTransitionTo(target SeatState) bool {
	for _, allowed := range seatTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// BookingStatus is the state of a booking ledger row.  Bookings are never
// deleted; ISSUED is the only state from which a transition is possible.
type BookingStatus string

const (
	BookingIssued    BookingStatus = "ISSUED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRefunded  BookingStatus = "REFUNDED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingIssued:    {BookingCancelled, BookingRefunded},
	BookingCancelled: {},
	BookingRefunded:  {},
}

// IsValid reports whether s is a known booking status.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PaymentMode labels how a booking was paid at the counter.  No gateway
// integration exists; the mode is recorded for the ledger only.
type PaymentMode string

const (
	PaymentCash PaymentMode = "CASH"
	PaymentPOS  PaymentMode = "POS"
)

// IsValid reports whether m is a known payment mode.
func (m PaymentMode) IsValid() bool {
	return m == PaymentCash || m == PaymentPOS
}
