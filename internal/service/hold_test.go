package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-pos/internal/model"
	"github.com/iliyamo/cinema-pos/internal/queue"
)

func holdFixture(t *testing.T) (*HoldManager, *memShows, *memSeats, *recNotifier, time.Time) {
	t.Helper()
	shows := newMemShows()
	seats := newMemSeats(shows)
	notifier := &recNotifier{}

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	shows.add(model.Show{
		PublicID: "show-1",
		ScreenID: 1,
		StartsAt: base.Add(2 * time.Hour),
		EndsAt:   base.Add(4 * time.Hour),
		Status:   model.ShowScheduled,
	})
	seats.add(model.ShowSeat{ShowID: 1, SeatPublicID: "seat-a1", Label: "A1", SeatType: "STANDARD", PriceCents: 1200, State: model.SeatAvailable})
	seats.add(model.ShowSeat{ShowID: 1, SeatPublicID: "seat-a2", Label: "A2", SeatType: "STANDARD", PriceCents: 1200, State: model.SeatAvailable})

	m := NewHoldManager(seats, notifier, 0)
	m.now = func() time.Time { return base }
	return m, shows, seats, notifier, base
}

func TestHoldPlacesTimedHold(t *testing.T) {
	m, _, seats, notifier, base := holdFixture(t)
	ctx := context.Background()

	held, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, held.State)
	require.Equal(t, "alice", *held.ReservedBy)
	require.Equal(t, "term-1", *held.ReservedSession)
	require.Equal(t, base.Add(5*time.Minute), *held.ExpiresAt)

	stored, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, stored.State)

	require.Equal(t, []string{queue.TypeSeatHeld}, notifier.types())
}

func TestHoldRejectsHeldSeat(t *testing.T) {
	m, _, _, _, _ := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)

	// A second hold is a conflict even for the same user.
	_, err = m.Hold(ctx, "show-1", "seat-a1", "alice", "term-2")
	require.True(t, errors.Is(err, ErrConflict))

	_, err = m.Hold(ctx, "show-1", "seat-a1", "bob", "term-3")
	require.True(t, errors.Is(err, ErrConflict))
}

func TestHoldReclaimsLapsedHold(t *testing.T) {
	m, _, _, notifier, base := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)

	// Exactly at the expiry instant the hold no longer protects the seat.
	m.now = func() time.Time { return base.Add(5 * time.Minute) }
	held, err := m.Hold(ctx, "show-1", "seat-a1", "bob", "term-2")
	require.NoError(t, err)
	require.Equal(t, "bob", *held.ReservedBy)

	// The reclaimed hold is announced as a release before the new hold,
	// so watchers never see the seat jump between holders.
	require.Equal(t, []string{queue.TypeSeatHeld, queue.TypeSeatReleased, queue.TypeSeatHeld}, notifier.types())
	require.Equal(t, "seat-a1", notifier.events[1].SeatPublicID)
}

func TestHoldUnknownSeat(t *testing.T) {
	m, _, _, _, _ := holdFixture(t)

	_, err := m.Hold(context.Background(), "show-1", "seat-z9", "alice", "term-1")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestReleaseRequiresHolder(t *testing.T) {
	m, _, seats, notifier, _ := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)

	err = m.Release(ctx, "show-1", "seat-a1", "bob")
	require.True(t, errors.Is(err, ErrConflict))

	stored, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, stored.State, "failed release must not change the seat")

	err = m.Release(ctx, "show-1", "seat-a1", "alice")
	require.NoError(t, err)
	stored, err = seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatAvailable, stored.State)
	require.Nil(t, stored.ReservedBy)

	require.Equal(t, []string{queue.TypeSeatHeld, queue.TypeSeatReleased}, notifier.types())
}

func TestReleaseAvailableSeatConflicts(t *testing.T) {
	m, _, _, _, _ := holdFixture(t)

	err := m.Release(context.Background(), "show-1", "seat-a1", "alice")
	require.True(t, errors.Is(err, ErrConflict))
}

func TestReleaseSessionFreesAllSeats(t *testing.T) {
	m, _, seats, notifier, _ := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)
	_, err = m.Hold(ctx, "show-1", "seat-a2", "bob", "term-1")
	require.NoError(t, err)

	released, err := m.ReleaseSession(ctx, "term-1")
	require.NoError(t, err)
	require.Equal(t, 2, released)

	for _, id := range []string{"seat-a1", "seat-a2"} {
		stored, err := seats.ByShowAndSeat(ctx, "show-1", id)
		require.NoError(t, err)
		require.Equal(t, model.SeatAvailable, stored.State)
	}
	require.Equal(t, []string{queue.TypeSeatHeld, queue.TypeSeatHeld, queue.TypeSeatReleased, queue.TypeSeatReleased}, notifier.types())
}

func TestSweepReleasesOnlyExpired(t *testing.T) {
	m, _, seats, _, base := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)

	// Second hold placed two minutes later so it outlives the first.
	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = m.Hold(ctx, "show-1", "seat-a2", "bob", "term-2")
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(5 * time.Minute) }
	released, err := m.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, released)

	a1, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatAvailable, a1.State)
	a2, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a2")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, a2.State)
}

// faultySeats wraps the in-memory store and fails the release mutations
// for one designated seat.
type faultySeats struct {
	*memSeats
	failSeatID uint64
}

func (f *faultySeats) ReleaseHeld(ctx context.Context, id uint64, holder string) (bool, error) {
	if id == f.failSeatID {
		return false, errors.New("row lock wait timeout")
	}
	return f.memSeats.ReleaseHeld(ctx, id, holder)
}

func (f *faultySeats) ReleaseExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	if id == f.failSeatID {
		return false, errors.New("row lock wait timeout")
	}
	return f.memSeats.ReleaseExpired(ctx, id, now)
}

func (f *faultySeats) seatID(t *testing.T, seatPublicID string) uint64 {
	t.Helper()
	for id, seat := range f.byID {
		if seat.SeatPublicID == seatPublicID {
			return id
		}
	}
	t.Fatalf("no seat %s in fixture", seatPublicID)
	return 0
}

func TestReleaseSessionSurvivesSeatFailure(t *testing.T) {
	m, _, seats, _, _ := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)
	_, err = m.Hold(ctx, "show-1", "seat-a2", "alice", "term-1")
	require.NoError(t, err)

	faulty := &faultySeats{memSeats: seats}
	faulty.failSeatID = faulty.seatID(t, "seat-a1")
	m.seats = faulty

	// One failing row is logged and skipped; the rest still release.
	released, err := m.ReleaseSession(ctx, "term-1")
	require.NoError(t, err)
	require.Equal(t, 1, released)

	a1, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, a1.State)
	a2, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a2")
	require.NoError(t, err)
	require.Equal(t, model.SeatAvailable, a2.State)
}

func TestSweepSurvivesSeatFailure(t *testing.T) {
	m, _, seats, _, base := holdFixture(t)
	ctx := context.Background()

	_, err := m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)
	_, err = m.Hold(ctx, "show-1", "seat-a2", "bob", "term-2")
	require.NoError(t, err)

	faulty := &faultySeats{memSeats: seats}
	faulty.failSeatID = faulty.seatID(t, "seat-a1")
	m.seats = faulty

	m.now = func() time.Time { return base.Add(6 * time.Minute) }
	released, err := m.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, released)

	a1, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, a1.State, "failed row is left for the next pass")
	a2, err := seats.ByShowAndSeat(ctx, "show-1", "seat-a2")
	require.NoError(t, err)
	require.Equal(t, model.SeatAvailable, a2.State)
}

func TestRemainingHoldTime(t *testing.T) {
	m, _, _, _, base := holdFixture(t)
	ctx := context.Background()

	left, err := m.RemainingHoldTime(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Zero(t, left, "available seat has no hold time")

	_, err = m.Hold(ctx, "show-1", "seat-a1", "alice", "term-1")
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(90 * time.Second) }
	left, err = m.RemainingHoldTime(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Equal(t, int64(210), left)

	m.now = func() time.Time { return base.Add(6 * time.Minute) }
	left, err = m.RemainingHoldTime(ctx, "show-1", "seat-a1")
	require.NoError(t, err)
	require.Zero(t, left, "lapsed hold reports zero")
}
