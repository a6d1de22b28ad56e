package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-pos/internal/model"
	"github.com/iliyamo/cinema-pos/internal/queue"
	"github.com/iliyamo/cinema-pos/internal/repository"
)

// DefaultMaxSeatsPerBooking caps how many seats one sale may confirm.
const DefaultMaxSeatsPerBooking = 10

// TxRunner executes a function inside one database transaction.  Every
// store call made with the context passed to fn participates in it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// ShowReader resolves shows for the sale and cancellation paths.
type ShowReader interface {
	ByPublicID(ctx context.Context, publicID string) (*model.Show, error)
}

// SaleSeatStore is the seat surface of the booking transaction.
// SeatsForUpdate must lock the rows for the rest of the transaction so
// the validated holds cannot change under the sale.
type SaleSeatStore interface {
	ByShowAndSeat(ctx context.Context, showPublicID, seatPublicID string) (*model.ShowSeat, error)
	SeatsForUpdate(ctx context.Context, showID uint64, seatPublicIDs []string) ([]model.ShowSeat, error)
	MarkSold(ctx context.Context, id, bookingID uint64) (bool, error)
	ReleaseSold(ctx context.Context, id, bookingID uint64) (bool, error)
}

// BookingStore is the ledger surface of the booking transaction.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ByPublicID(ctx context.Context, publicID string) (*model.Booking, error)
	ByGroupRef(ctx context.Context, groupRef string) ([]model.Booking, error)
	ListByShow(ctx context.Context, showPublicID string) ([]model.Booking, error)
	IssuedSeat(ctx context.Context, showPublicID string, seatPublicIDs []string) (string, bool, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus, reason *string) (bool, error)
	IncrementPrintCount(ctx context.Context, publicID string) (uint32, error)
}

// BookingConfig carries the sale tunables.
type BookingConfig struct {
	VATPercent float64       // VAT rate applied to every seat price
	MaxSeats   int           // per-request seat cap; 0 means the default
	Cutoff     time.Duration // how long before start the booking window closes
}

// BookingService confirms held seats into sold seats and maintains the
// booking ledger.
type BookingService struct {
	tx       TxRunner
	shows    ShowReader
	seats    SaleSeatStore
	bookings BookingStore
	notifier Notifier
	cfg      BookingConfig
	now      func() time.Time
}

// NewBookingService constructs a BookingService.
func NewBookingService(tx TxRunner, shows ShowReader, seats SaleSeatStore, bookings BookingStore, notifier Notifier, cfg BookingConfig) *BookingService {
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = DefaultMaxSeatsPerBooking
	}
	return &BookingService{tx: tx, shows: shows, seats: seats, bookings: bookings, notifier: notifier, cfg: cfg, now: time.Now}
}

// BookRequest is one sale: every requested seat must be held by the
// acting user and unexpired, or the whole request is rejected.
type BookRequest struct {
	ShowPublicID  string
	SeatPublicIDs []string
	PaymentMode   model.PaymentMode
	User          string
}

// vatCents computes the VAT for a base price in cents, rounded half-up
// to the cent.  Equivalent to rounding price*pct/100 to two decimals on
// a decimal currency amount.
func vatCents(base uint32, pct float64) uint32 {
	return uint32(math.Floor(float64(base)*pct/100.0 + 0.5))
}

// Book confirms a sale.  All steps run in one transaction: the show is
// checked for bookability and the booking window, every seat is locked
// and validated as a live hold owned by the acting user, the ledger is
// re-checked for an already issued booking on any of the seats, and only
// then are the ledger rows written and the seats flipped to SOLD.  The
// flip clears the reservation columns, which is also what ends the
// session's hold tracking.  Events go out after commit: one aggregated
// BOOKING_CONFIRMED plus one SEAT_SOLD per seat.
func (s *BookingService) Book(ctx context.Context, req BookRequest) ([]model.Booking, error) {
	if req.ShowPublicID == "" || req.User == "" {
		return nil, failf(ErrValidation, "show and user are required")
	}
	if !req.PaymentMode.IsValid() {
		return nil, failf(ErrValidation, "unknown payment mode %q", req.PaymentMode)
	}
	if len(req.SeatPublicIDs) == 0 {
		return nil, failf(ErrValidation, "at least one seat is required")
	}
	if len(req.SeatPublicIDs) > s.cfg.MaxSeats {
		return nil, failf(ErrValidation, "at most %d seats per booking", s.cfg.MaxSeats)
	}
	seen := make(map[string]struct{}, len(req.SeatPublicIDs))
	for _, id := range req.SeatPublicIDs {
		if id == "" {
			return nil, failf(ErrValidation, "empty seat id")
		}
		if _, dup := seen[id]; dup {
			return nil, failf(ErrValidation, "duplicate seat id %s", id)
		}
		seen[id] = struct{}{}
	}

	var created []model.Booking
	var show *model.Show
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		show, err = s.shows.ByPublicID(ctx, req.ShowPublicID)
		if err != nil {
			if errors.Is(err, repository.ErrShowNotFound) {
				return failf(ErrNotFound, "show %s not found", req.ShowPublicID)
			}
			return err
		}
		now := s.now().UTC()
		if !show.Status.Bookable() {
			return failf(ErrConflict, "show %s is %s", show.PublicID, show.Status)
		}
		if now.After(show.StartsAt.Add(-s.cfg.Cutoff)) {
			return failf(ErrConflict, "booking window for show %s has closed", show.PublicID)
		}
		seats, err := s.seats.SeatsForUpdate(ctx, show.ID, req.SeatPublicIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(req.SeatPublicIDs) {
			return failf(ErrNotFound, "requested %d seats, found %d", len(req.SeatPublicIDs), len(seats))
		}
		for i := range seats {
			seat := &seats[i]
			if !seat.HeldBy(req.User) {
				return failf(ErrConflict, "seat %s is not held by %s", seat.SeatPublicID, req.User)
			}
			if seat.ExpiresAt == nil || !seat.ExpiresAt.After(now) {
				return failf(ErrConflict, "hold on seat %s has expired", seat.SeatPublicID)
			}
		}
		// The holds checked out, but a booking could have been issued for
		// one of these seats between hold validation and now.  Re-check
		// the ledger inside the transaction before writing anything.
		if seat, dup, err := s.bookings.IssuedSeat(ctx, show.PublicID, req.SeatPublicIDs); err != nil {
			return err
		} else if dup {
			return failf(ErrConflict, "seat %s already has an issued booking", seat)
		}
		groupRef := uuid.NewString()
		for i := range seats {
			seat := &seats[i]
			vat := vatCents(seat.PriceCents, s.cfg.VATPercent)
			b := model.Booking{
				PublicID:     uuid.NewString(),
				GroupRef:     groupRef,
				ShowPublicID: show.PublicID,
				SeatPublicID: seat.SeatPublicID,
				SeatLabel:    seat.Label,
				PriceCents:   seat.PriceCents,
				VATCents:     vat,
				TotalCents:   seat.PriceCents + vat,
				PaymentMode:  req.PaymentMode,
				Status:       model.BookingIssued,
				BookedBy:     req.User,
				BookedAt:     now,
			}
			if err := s.bookings.Create(ctx, &b); err != nil {
				return err
			}
			ok, err := s.seats.MarkSold(ctx, seat.ID, b.ID)
			if err != nil {
				return err
			}
			if !ok {
				return failf(ErrConflict, "seat %s is no longer held", seat.SeatPublicID)
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	seatIDs := make([]string, 0, len(created))
	total := uint32(0)
	for _, b := range created {
		seatIDs = append(seatIDs, b.SeatPublicID)
		total += b.TotalCents
	}
	s.notifier.Publish(queue.BookingConfirmed(show.PublicID, created[0].GroupRef, seatIDs, total, string(req.PaymentMode), at))
	for _, b := range created {
		s.notifier.Publish(queue.SeatSold(show.PublicID, b.SeatPublicID, at))
	}
	return created, nil
}

// Cancel voids one issued booking and releases its seat.  Permitted only
// while the booking is ISSUED and the show has not started, except on a
// cancelled show where the start time no longer matters.
func (s *BookingService) Cancel(ctx context.Context, publicID, reason string) error {
	return s.void(ctx, publicID, model.BookingCancelled, reason)
}

// Refund voids one issued booking like Cancel but records REFUNDED and
// requires a reason.
func (s *BookingService) Refund(ctx context.Context, publicID, reason string) error {
	if reason == "" {
		return failf(ErrValidation, "refund requires a reason")
	}
	return s.void(ctx, publicID, model.BookingRefunded, reason)
}

func (s *BookingService) void(ctx context.Context, publicID string, target model.BookingStatus, reason string) error {
	var released *model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.ByPublicID(ctx, publicID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return failf(ErrNotFound, "booking %s not found", publicID)
			}
			return err
		}
		if b.Status != model.BookingIssued {
			return failf(ErrConflict, "booking %s is %s", b.PublicID, b.Status)
		}
		if err := s.checkVoidWindow(ctx, b.ShowPublicID); err != nil {
			return err
		}
		if err := s.voidOne(ctx, b, target, reason); err != nil {
			return err
		}
		released = b
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Publish(queue.SeatReleased(released.ShowPublicID, released.SeatPublicID, s.now().UTC()))
	return nil
}

// CancelGroup voids every issued booking sharing a group reference and
// releases their seats.  Siblings that are no longer ISSUED are skipped,
// so a partially cancelled group can be retried.
func (s *BookingService) CancelGroup(ctx context.Context, groupRef, reason string) (int, error) {
	var released []model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		group, err := s.bookings.ByGroupRef(ctx, groupRef)
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return failf(ErrNotFound, "booking group %s not found", groupRef)
		}
		if err := s.checkVoidWindow(ctx, group[0].ShowPublicID); err != nil {
			return err
		}
		for i := range group {
			b := &group[i]
			if b.Status != model.BookingIssued {
				continue
			}
			if err := s.voidOne(ctx, b, model.BookingCancelled, reason); err != nil {
				return err
			}
			released = append(released, *b)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	at := s.now().UTC()
	for _, b := range released {
		s.notifier.Publish(queue.SeatReleased(b.ShowPublicID, b.SeatPublicID, at))
	}
	return len(released), nil
}

// checkVoidWindow rejects cancellation once the show has started, unless
// the show itself was cancelled.
func (s *BookingService) checkVoidWindow(ctx context.Context, showPublicID string) error {
	show, err := s.shows.ByPublicID(ctx, showPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return failf(ErrNotFound, "show %s not found", showPublicID)
		}
		return err
	}
	if show.Status == model.ShowCancelled {
		return nil
	}
	if !show.StartsAt.After(s.now().UTC()) {
		return failf(ErrConflict, "show %s has already started", show.PublicID)
	}
	return nil
}

// voidOne applies the status transition to one booking and releases its
// seat back to AVAILABLE.  Runs inside the caller's transaction.
func (s *BookingService) voidOne(ctx context.Context, b *model.Booking, target model.BookingStatus, reason string) error {
	var r *string
	if reason != "" {
		r = &reason
	}
	ok, err := s.bookings.UpdateStatus(ctx, b.ID, model.BookingIssued, target, r)
	if err != nil {
		return err
	}
	if !ok {
		return failf(ErrConflict, "booking %s is no longer issued", b.PublicID)
	}
	seat, err := s.seats.ByShowAndSeat(ctx, b.ShowPublicID, b.SeatPublicID)
	if err != nil {
		return err
	}
	ok, err = s.seats.ReleaseSold(ctx, seat.ID, b.ID)
	if err != nil {
		return err
	}
	if !ok {
		return failf(ErrConflict, "seat %s is not sold under booking %s", b.SeatPublicID, b.PublicID)
	}
	return nil
}

// Get returns one booking by public id.
func (s *BookingService) Get(ctx context.Context, publicID string) (*model.Booking, error) {
	b, err := s.bookings.ByPublicID(ctx, publicID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, failf(ErrNotFound, "booking %s not found", publicID)
	}
	return b, err
}

// ListByShow returns every booking recorded for a show.
func (s *BookingService) ListByShow(ctx context.Context, showPublicID string) ([]model.Booking, error) {
	return s.bookings.ListByShow(ctx, showPublicID)
}

// IncrementPrintCount bumps a booking's print counter and returns the
// new value.  Audit-only; the counter never gates anything.
func (s *BookingService) IncrementPrintCount(ctx context.Context, publicID string) (uint32, error) {
	n, err := s.bookings.IncrementPrintCount(ctx, publicID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return 0, failf(ErrNotFound, "booking %s not found", publicID)
	}
	return n, err
}
