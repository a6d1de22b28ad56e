package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/cinema-pos/internal/model"
	"github.com/iliyamo/cinema-pos/internal/queue"
	"github.com/iliyamo/cinema-pos/internal/repository"
)

// DefaultHoldTTL is the fixed lifetime of a seat hold.  It is not
// configurable per call.
const DefaultHoldTTL = 5 * time.Minute

// SeatStore is the persistence surface the hold manager needs.  The seat
// row is the source of truth for every hold: holder, session and expiry
// all live on it, so disconnect cleanup and the expiry sweep are plain
// queries.  The conditional mutations return false when the seat was not
// in the expected state, which is how concurrent writers lose races.
type SeatStore interface {
	ByShowAndSeat(ctx context.Context, showPublicID, seatPublicID string) (*model.ShowSeat, error)
	TryHold(ctx context.Context, id uint64, user, session string, at, expiresAt time.Time) (bool, error)
	ReleaseHeld(ctx context.Context, id uint64, holder string) (bool, error)
	ReleaseExpired(ctx context.Context, id uint64, now time.Time) (bool, error)
	HeldBySession(ctx context.Context, session string) ([]model.HeldSeat, error)
	ExpiredHeld(ctx context.Context, now time.Time) ([]model.HeldSeat, error)
}

// HoldManager owns the AVAILABLE↔HELD side of the seat state machine.
type HoldManager struct {
	seats    SeatStore
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

// NewHoldManager constructs a HoldManager.  A zero ttl falls back to
// DefaultHoldTTL.
func NewHoldManager(seats SeatStore, notifier Notifier, ttl time.Duration) *HoldManager {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &HoldManager{seats: seats, notifier: notifier, ttl: ttl, now: time.Now}
}

// Hold places a time-bounded hold on one seat for the acting user and
// terminal session.  Only an AVAILABLE seat can be held; anything else is
// a conflict, including a seat the same user already holds.  A lapsed
// hold found on the seat is cleaned up inline before the attempt, so a
// terminal does not have to wait for the sweep.
func (m *HoldManager) Hold(ctx context.Context, showPublicID, seatPublicID, user, session string) (*model.ShowSeat, error) {
	if showPublicID == "" || seatPublicID == "" || user == "" || session == "" {
		return nil, failf(ErrValidation, "show, seat, user and session are required")
	}
	seat, err := m.seats.ByShowAndSeat(ctx, showPublicID, seatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, failf(ErrNotFound, "seat %s not found on show %s", seatPublicID, showPublicID)
		}
		return nil, err
	}
	now := m.now().UTC()
	if seat.HoldExpired(now) {
		ok, err := m.seats.ReleaseExpired(ctx, seat.ID, now)
		if err != nil {
			return nil, err
		}
		// Terminals watching the seat need the release before the new
		// hold, exactly as if the sweep had gotten there first.
		if ok {
			m.notifier.Publish(queue.SeatReleased(showPublicID, seatPublicID, now))
		}
	}
	expiresAt := now.Add(m.ttl)
	ok, err := m.seats.TryHold(ctx, seat.ID, user, session, now, expiresAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, failf(ErrConflict, "seat %s is not available", seatPublicID)
	}
	m.notifier.Publish(queue.SeatHeld(showPublicID, seatPublicID, user, expiresAt, now))

	held := *seat
	held.State = model.SeatHeld
	held.ReservedBy = &user
	held.ReservedSession = &session
	held.ReservedAt = &now
	held.ExpiresAt = &expiresAt
	return &held, nil
}

// Release returns a held seat to AVAILABLE.  Only the holder may release:
// a seat that is not HELD, or held by a different user, is a conflict and
// nothing changes.
func (m *HoldManager) Release(ctx context.Context, showPublicID, seatPublicID, user string) error {
	if user == "" {
		return failf(ErrValidation, "user is required")
	}
	seat, err := m.seats.ByShowAndSeat(ctx, showPublicID, seatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return failf(ErrNotFound, "seat %s not found on show %s", seatPublicID, showPublicID)
		}
		return err
	}
	ok, err := m.seats.ReleaseHeld(ctx, seat.ID, user)
	if err != nil {
		return err
	}
	if !ok {
		return failf(ErrConflict, "seat %s is not held by %s", seatPublicID, user)
	}
	m.notifier.Publish(queue.SeatReleased(showPublicID, seatPublicID, m.now().UTC()))
	return nil
}

// ReleaseSession releases every seat held under a disconnected terminal
// session, bypassing the ownership check.  Each seat is released
// independently: a failure is logged and skipped so one bad row never
// blocks the rest.  Returns the number of seats released.
func (m *HoldManager) ReleaseSession(ctx context.Context, session string) (int, error) {
	if session == "" {
		return 0, failf(ErrValidation, "session is required")
	}
	held, err := m.seats.HeldBySession(ctx, session)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, h := range held {
		ok, err := m.seats.ReleaseHeld(ctx, h.ID, "")
		if err != nil {
			log.Printf("hold: session %s: release seat %s failed: %v", session, h.SeatPublicID, err)
			continue
		}
		if !ok {
			// Lost a race with a confirmation or the sweep; nothing to do.
			continue
		}
		released++
		m.notifier.Publish(queue.SeatReleased(h.ShowPublicID, h.SeatPublicID, m.now().UTC()))
	}
	return released, nil
}

// SweepExpired force-releases every hold whose TTL has lapsed.  Per-seat
// failures are logged and skipped.  A seat confirmed or released between
// the read and the conditional update simply no longer matches and is
// skipped without error.  Returns the number of seats released.
func (m *HoldManager) SweepExpired(ctx context.Context) (int, error) {
	now := m.now().UTC()
	expired, err := m.seats.ExpiredHeld(ctx, now)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, h := range expired {
		ok, err := m.seats.ReleaseExpired(ctx, h.ID, now)
		if err != nil {
			log.Printf("hold: sweep: release seat %s failed: %v", h.SeatPublicID, err)
			continue
		}
		if !ok {
			continue
		}
		released++
		m.notifier.Publish(queue.SeatReleased(h.ShowPublicID, h.SeatPublicID, now))
	}
	return released, nil
}

// RemainingHoldTime returns the whole seconds left on a seat's hold, or
// zero when the seat is not held or the hold has lapsed.
func (m *HoldManager) RemainingHoldTime(ctx context.Context, showPublicID, seatPublicID string) (int64, error) {
	seat, err := m.seats.ByShowAndSeat(ctx, showPublicID, seatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return 0, failf(ErrNotFound, "seat %s not found on show %s", seatPublicID, showPublicID)
		}
		return 0, err
	}
	if seat.State != model.SeatHeld || seat.ExpiresAt == nil {
		return 0, nil
	}
	left := seat.ExpiresAt.Sub(m.now().UTC())
	if left < 0 {
		return 0, nil
	}
	return int64(left.Seconds()), nil
}
