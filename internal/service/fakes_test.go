package service

// In-memory fakes backing the service tests.  They implement the same
// store interfaces the MySQL repositories do, including the conditional
// single-row semantics: every mutation checks the expected current state
// and reports false instead of writing when it does not match.

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-pos/internal/model"
	"github.com/iliyamo/cinema-pos/internal/queue"
	"github.com/iliyamo/cinema-pos/internal/repository"
)

// nopTx satisfies TxRunner without any transactional behavior.
type nopTx struct{}

func (nopTx) WithTx(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

// recNotifier records published events for assertions.
type recNotifier struct {
	events []queue.Event
}

func (n *recNotifier) Publish(ev queue.Event) { n.events = append(n.events, ev) }

func (n *recNotifier) types() []string {
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

// memShows is an in-memory ShowStore and ShowReader.
type memShows struct {
	byID   map[uint64]*model.Show
	nextID uint64
}

func newMemShows() *memShows { return &memShows{byID: map[uint64]*model.Show{}} }

func (m *memShows) add(s model.Show) *model.Show {
	m.nextID++
	s.ID = m.nextID
	m.byID[s.ID] = &s
	return &s
}

func (m *memShows) Create(ctx context.Context, s *model.Show) error {
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memShows) ByPublicID(ctx context.Context, publicID string) (*model.Show, error) {
	for _, s := range m.byID {
		if s.PublicID == publicID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrShowNotFound
}

func (m *memShows) FindOverlapping(ctx context.Context, screenID uint64, start, end time.Time) ([]model.Show, error) {
	var out []model.Show
	for _, s := range m.byID {
		if s.ScreenID != screenID {
			continue
		}
		if s.Status != model.ShowScheduled && s.Status != model.ShowRunning {
			continue
		}
		if s.StartsAt.Before(end) && s.EndsAt.After(start) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memShows) UpdateStatus(ctx context.Context, id uint64, from, to model.ShowStatus) (bool, error) {
	s, ok := m.byID[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (m *memShows) DueToStart(ctx context.Context, now time.Time) ([]model.Show, error) {
	var out []model.Show
	for _, s := range m.byID {
		if s.Status == model.ShowScheduled && !s.StartsAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memShows) DueToComplete(ctx context.Context, now time.Time) ([]model.Show, error) {
	var out []model.Show
	for _, s := range m.byID {
		if s.Status == model.ShowRunning && !s.EndsAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// memSeats is an in-memory seat store covering the hold, sale and
// inventory interfaces.  It resolves show public ids through memShows.
type memSeats struct {
	shows  *memShows
	byID   map[uint64]*model.ShowSeat
	nextID uint64
}

func newMemSeats(shows *memShows) *memSeats {
	return &memSeats{shows: shows, byID: map[uint64]*model.ShowSeat{}}
}

func (m *memSeats) add(s model.ShowSeat) *model.ShowSeat {
	m.nextID++
	s.ID = m.nextID
	m.byID[s.ID] = &s
	return &s
}

func (m *memSeats) showPublicID(showID uint64) string {
	if s, ok := m.shows.byID[showID]; ok {
		return s.PublicID
	}
	return ""
}

func (m *memSeats) ByShowAndSeat(ctx context.Context, showPublicID, seatPublicID string) (*model.ShowSeat, error) {
	for _, seat := range m.byID {
		if m.showPublicID(seat.ShowID) == showPublicID && seat.SeatPublicID == seatPublicID {
			cp := *seat
			return &cp, nil
		}
	}
	return nil, repository.ErrSeatNotFound
}

func (m *memSeats) TryHold(ctx context.Context, id uint64, user, session string, at, expiresAt time.Time) (bool, error) {
	seat, ok := m.byID[id]
	if !ok || seat.State != model.SeatAvailable {
		return false, nil
	}
	seat.State = model.SeatHeld
	seat.ReservedBy = &user
	seat.ReservedSession = &session
	seat.ReservedAt = &at
	seat.ExpiresAt = &expiresAt
	return true, nil
}

func (m *memSeats) clearHold(seat *model.ShowSeat) {
	seat.State = model.SeatAvailable
	seat.ReservedBy = nil
	seat.ReservedSession = nil
	seat.ReservedAt = nil
	seat.ExpiresAt = nil
}

func (m *memSeats) ReleaseHeld(ctx context.Context, id uint64, holder string) (bool, error) {
	seat, ok := m.byID[id]
	if !ok || seat.State != model.SeatHeld {
		return false, nil
	}
	if holder != "" && (seat.ReservedBy == nil || *seat.ReservedBy != holder) {
		return false, nil
	}
	m.clearHold(seat)
	return true, nil
}

func (m *memSeats) ReleaseExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	seat, ok := m.byID[id]
	if !ok || seat.State != model.SeatHeld {
		return false, nil
	}
	if seat.ExpiresAt == nil || seat.ExpiresAt.After(now) {
		return false, nil
	}
	m.clearHold(seat)
	return true, nil
}

func (m *memSeats) HeldBySession(ctx context.Context, session string) ([]model.HeldSeat, error) {
	var out []model.HeldSeat
	for _, seat := range m.byID {
		if seat.State == model.SeatHeld && seat.ReservedSession != nil && *seat.ReservedSession == session {
			out = append(out, model.HeldSeat{ShowSeat: *seat, ShowPublicID: m.showPublicID(seat.ShowID)})
		}
	}
	return out, nil
}

func (m *memSeats) ExpiredHeld(ctx context.Context, now time.Time) ([]model.HeldSeat, error) {
	var out []model.HeldSeat
	for _, seat := range m.byID {
		if seat.State == model.SeatHeld && seat.ExpiresAt != nil && !seat.ExpiresAt.After(now) {
			out = append(out, model.HeldSeat{ShowSeat: *seat, ShowPublicID: m.showPublicID(seat.ShowID)})
		}
	}
	return out, nil
}

func (m *memSeats) SeatsForUpdate(ctx context.Context, showID uint64, seatPublicIDs []string) ([]model.ShowSeat, error) {
	want := make(map[string]struct{}, len(seatPublicIDs))
	for _, id := range seatPublicIDs {
		want[id] = struct{}{}
	}
	var out []model.ShowSeat
	for _, seat := range m.byID {
		if seat.ShowID != showID {
			continue
		}
		if _, ok := want[seat.SeatPublicID]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (m *memSeats) MarkSold(ctx context.Context, id, bookingID uint64) (bool, error) {
	seat, ok := m.byID[id]
	if !ok || seat.State != model.SeatHeld {
		return false, nil
	}
	seat.State = model.SeatSold
	seat.ReservedBy = nil
	seat.ReservedSession = nil
	seat.ReservedAt = nil
	seat.ExpiresAt = nil
	seat.ConfirmedBookingID = &bookingID
	return true, nil
}

func (m *memSeats) ReleaseSold(ctx context.Context, id, bookingID uint64) (bool, error) {
	seat, ok := m.byID[id]
	if !ok || seat.State != model.SeatSold {
		return false, nil
	}
	if seat.ConfirmedBookingID == nil || *seat.ConfirmedBookingID != bookingID {
		return false, nil
	}
	seat.State = model.SeatAvailable
	seat.ConfirmedBookingID = nil
	return true, nil
}

func (m *memSeats) CreateBulk(ctx context.Context, seats []model.ShowSeat) error {
	for _, s := range seats {
		m.add(s)
	}
	return nil
}

func (m *memSeats) ByShow(ctx context.Context, showID uint64) ([]model.ShowSeat, error) {
	var out []model.ShowSeat
	for _, seat := range m.byID {
		if seat.ShowID == showID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

// memBookings is an in-memory BookingStore.
type memBookings struct {
	byID   map[uint64]*model.Booking
	nextID uint64
}

func newMemBookings() *memBookings { return &memBookings{byID: map[uint64]*model.Booking{}} }

func (m *memBookings) Create(ctx context.Context, b *model.Booking) error {
	m.nextID++
	b.ID = m.nextID
	cp := *b
	m.byID[b.ID] = &cp
	return nil
}

func (m *memBookings) ByPublicID(ctx context.Context, publicID string) (*model.Booking, error) {
	for _, b := range m.byID {
		if b.PublicID == publicID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (m *memBookings) ByGroupRef(ctx context.Context, groupRef string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range m.byID {
		if b.GroupRef == groupRef {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookings) ListByShow(ctx context.Context, showPublicID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range m.byID {
		if b.ShowPublicID == showPublicID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookings) IssuedSeat(ctx context.Context, showPublicID string, seatPublicIDs []string) (string, bool, error) {
	want := make(map[string]struct{}, len(seatPublicIDs))
	for _, id := range seatPublicIDs {
		want[id] = struct{}{}
	}
	for _, b := range m.byID {
		if b.ShowPublicID != showPublicID || b.Status != model.BookingIssued {
			continue
		}
		if _, ok := want[b.SeatPublicID]; ok {
			return b.SeatPublicID, true, nil
		}
	}
	return "", false, nil
}

func (m *memBookings) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus, reason *string) (bool, error) {
	b, ok := m.byID[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.Reason = reason
	return true, nil
}

func (m *memBookings) IncrementPrintCount(ctx context.Context, publicID string) (uint32, error) {
	for _, b := range m.byID {
		if b.PublicID == publicID {
			b.PrintCount++
			return b.PrintCount, nil
		}
	}
	return 0, repository.ErrBookingNotFound
}

// memCatalog is an in-memory CatalogReader.
type memCatalog struct {
	movies  map[string]*model.Movie
	screens map[string]*model.Screen
	seats   map[uint64][]model.ScreenSeat
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		movies:  map[string]*model.Movie{},
		screens: map[string]*model.Screen{},
		seats:   map[uint64][]model.ScreenSeat{},
	}
}

func (m *memCatalog) MovieByPublicID(ctx context.Context, publicID string) (*model.Movie, error) {
	if mv, ok := m.movies[publicID]; ok {
		cp := *mv
		return &cp, nil
	}
	return nil, repository.ErrMovieNotFound
}

func (m *memCatalog) ScreenByPublicID(ctx context.Context, publicID string) (*model.Screen, error) {
	if sc, ok := m.screens[publicID]; ok {
		cp := *sc
		return &cp, nil
	}
	return nil, repository.ErrScreenNotFound
}

func (m *memCatalog) ActiveSeats(ctx context.Context, screenID uint64) ([]model.ScreenSeat, error) {
	var out []model.ScreenSeat
	for _, s := range m.seats[screenID] {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}
