package model

import "testing"

func TestShowStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     ShowStatus
		to       ShowStatus
		expected bool
	}{
		{"SCHEDULED -> RUNNING", ShowScheduled, ShowRunning, true},
		{"SCHEDULED -> CANCELLED", ShowScheduled, ShowCancelled, true},
		{"SCHEDULED -> COMPLETED", ShowScheduled, ShowCompleted, false},
		{"RUNNING -> COMPLETED", ShowRunning, ShowCompleted, true},
		{"RUNNING -> CANCELLED", ShowRunning, ShowCancelled, false},
		{"RUNNING -> SCHEDULED", ShowRunning, ShowScheduled, false},
		{"COMPLETED -> any", ShowCompleted, ShowRunning, false},
		{"CANCELLED -> any", ShowCancelled, ShowScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShowStatusIsValid(t *testing.T) {
	for _, s := range []ShowStatus{ShowScheduled, ShowRunning, ShowCompleted, ShowCancelled} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ShowStatus("PAUSED").IsValid() {
		t.Error("PAUSED should not be valid")
	}
}

func TestShowStatusBookable(t *testing.T) {
	tests := []struct {
		status   ShowStatus
		expected bool
	}{
		{ShowScheduled, true},
		{ShowRunning, true},
		{ShowCompleted, false},
		{ShowCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Bookable(); got != tt.expected {
				t.Errorf("Bookable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSeatStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     SeatState
		to       SeatState
		expected bool
	}{
		{"AVAILABLE -> HELD", SeatAvailable, SeatHeld, true},
		{"AVAILABLE -> SOLD", SeatAvailable, SeatSold, false},
		{"HELD -> AVAILABLE", SeatHeld, SeatAvailable, true},
		{"HELD -> SOLD", SeatHeld, SeatSold, true},
		{"SOLD -> AVAILABLE", SeatSold, SeatAvailable, true},
		{"SOLD -> HELD", SeatSold, SeatHeld, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBookingStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     BookingStatus
		to       BookingStatus
		expected bool
	}{
		{"ISSUED -> CANCELLED", BookingIssued, BookingCancelled, true},
		{"ISSUED -> REFUNDED", BookingIssued, BookingRefunded, true},
		{"CANCELLED -> ISSUED", BookingCancelled, BookingIssued, false},
		{"REFUNDED -> CANCELLED", BookingRefunded, BookingCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPaymentModeIsValid(t *testing.T) {
	tests := []struct {
		mode     PaymentMode
		expected bool
	}{
		{PaymentCash, true},
		{PaymentPOS, true},
		{PaymentMode("CARD"), false},
		{PaymentMode(""), false},
	}

	for _, tt := range tests {
		if got := tt.mode.IsValid(); got != tt.expected {
			t.Errorf("IsValid(%q) = %v, want %v", tt.mode, got, tt.expected)
		}
	}
}
