package model

import (
	"testing"
	"time"
)

func TestHeldBy(t *testing.T) {
	alice := "alice"
	now := time.Now().UTC()

	seat := ShowSeat{State: SeatHeld, ReservedBy: &alice, ExpiresAt: &now}
	if !seat.HeldBy("alice") {
		t.Error("seat should be held by alice")
	}
	if seat.HeldBy("bob") {
		t.Error("seat should not be held by bob")
	}

	seat.State = SeatAvailable
	if seat.HeldBy("alice") {
		t.Error("available seat is held by nobody")
	}
}

func TestHoldExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	alice := "alice"

	tests := []struct {
		name     string
		state    SeatState
		expires  *time.Time
		expected bool
	}{
		{"expires in the future", SeatHeld, ptr(now.Add(time.Minute)), false},
		{"expires exactly now", SeatHeld, ptr(now), true},
		{"expired a minute ago", SeatHeld, ptr(now.Add(-time.Minute)), true},
		{"no expiry set", SeatHeld, nil, false},
		{"not held", SeatAvailable, ptr(now.Add(-time.Minute)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seat := ShowSeat{State: tt.state, ReservedBy: &alice, ExpiresAt: tt.expires}
			if got := seat.HoldExpired(now); got != tt.expected {
				t.Errorf("HoldExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
