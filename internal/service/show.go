package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-pos/internal/model"
	"github.com/iliyamo/cinema-pos/internal/queue"
	"github.com/iliyamo/cinema-pos/internal/repository"
)

// DefaultScheduleBuffer is the turnaround time added after a movie's
// runtime when deriving a show's end time.
const DefaultScheduleBuffer = 30 * time.Minute

// ShowStore is the persistence surface of scheduling and the lifecycle
// advance.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	ByPublicID(ctx context.Context, publicID string) (*model.Show, error)
	FindOverlapping(ctx context.Context, screenID uint64, start, end time.Time) ([]model.Show, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.ShowStatus) (bool, error)
	DueToStart(ctx context.Context, now time.Time) ([]model.Show, error)
	DueToComplete(ctx context.Context, now time.Time) ([]model.Show, error)
}

// InventoryStore writes and reads a show's materialized seats.
type InventoryStore interface {
	CreateBulk(ctx context.Context, seats []model.ShowSeat) error
	ByShow(ctx context.Context, showID uint64) ([]model.ShowSeat, error)
}

// CatalogReader is the read-only view of the external movie/screen
// catalog, consulted only at scheduling time.
type CatalogReader interface {
	MovieByPublicID(ctx context.Context, publicID string) (*model.Movie, error)
	ScreenByPublicID(ctx context.Context, publicID string) (*model.Screen, error)
	ActiveSeats(ctx context.Context, screenID uint64) ([]model.ScreenSeat, error)
}

// ShowService schedules shows, materializes their seat inventory and
// advances their lifecycle.
type ShowService struct {
	tx       TxRunner
	shows    ShowStore
	seats    InventoryStore
	catalog  CatalogReader
	notifier Notifier
	buffer   time.Duration
	now      func() time.Time
}

// NewShowService constructs a ShowService.  A zero buffer falls back to
// DefaultScheduleBuffer.
func NewShowService(tx TxRunner, shows ShowStore, seats InventoryStore, catalog CatalogReader, notifier Notifier, buffer time.Duration) *ShowService {
	if buffer <= 0 {
		buffer = DefaultScheduleBuffer
	}
	return &ShowService{tx: tx, shows: shows, seats: seats, catalog: catalog, notifier: notifier, buffer: buffer, now: time.Now}
}

// ScheduleRequest asks for a new show.  The end time is never supplied:
// it is derived from the movie's runtime plus the turnaround buffer.
// Prices maps each seat type on the screen to a positive price in cents.
type ScheduleRequest struct {
	MoviePublicID  string
	ScreenPublicID string
	StartsAt       time.Time
	Prices         map[string]uint32
}

// Schedule creates a show and its seat inventory in one transaction.
// The screen must be free of SCHEDULED or RUNNING shows overlapping the
// derived window; a clash names the conflicting show.  Every active seat
// of the screen is materialized with its layout metadata copied verbatim
// and the price of its seat type; a seat type missing from Prices aborts
// the whole generation, leaving no partial inventory and no show.
func (s *ShowService) Schedule(ctx context.Context, req ScheduleRequest) (*model.Show, error) {
	if req.MoviePublicID == "" || req.ScreenPublicID == "" {
		return nil, failf(ErrValidation, "movie and screen are required")
	}
	if req.StartsAt.IsZero() {
		return nil, failf(ErrValidation, "start time is required")
	}
	if len(req.Prices) == 0 {
		return nil, failf(ErrValidation, "price map is required")
	}
	for seatType, price := range req.Prices {
		if price == 0 {
			return nil, failf(ErrInvalidPrice, "seat type %s has a non-positive price", seatType)
		}
	}
	movie, err := s.catalog.MovieByPublicID(ctx, req.MoviePublicID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, failf(ErrNotFound, "movie %s not found", req.MoviePublicID)
		}
		return nil, err
	}
	if !movie.IsActive {
		return nil, failf(ErrConflict, "movie %s is inactive", movie.PublicID)
	}
	screen, err := s.catalog.ScreenByPublicID(ctx, req.ScreenPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrScreenNotFound) {
			return nil, failf(ErrNotFound, "screen %s not found", req.ScreenPublicID)
		}
		return nil, err
	}
	if !screen.IsActive {
		return nil, failf(ErrConflict, "screen %s is inactive", screen.PublicID)
	}

	startsAt := req.StartsAt.UTC()
	endsAt := startsAt.Add(time.Duration(movie.DurationMin)*time.Minute + s.buffer)

	var show *model.Show
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		overlaps, err := s.shows.FindOverlapping(ctx, screen.ID, startsAt, endsAt)
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return failf(ErrConflict, "screen %s is occupied by show %s from %s to %s",
				screen.PublicID, overlaps[0].PublicID,
				overlaps[0].StartsAt.Format(time.RFC3339), overlaps[0].EndsAt.Format(time.RFC3339))
		}
		show = &model.Show{
			PublicID: uuid.NewString(),
			MovieID:  movie.ID,
			ScreenID: screen.ID,
			StartsAt: startsAt,
			EndsAt:   endsAt,
			Status:   model.ShowScheduled,
		}
		if err := s.shows.Create(ctx, show); err != nil {
			return err
		}
		template, err := s.catalog.ActiveSeats(ctx, screen.ID)
		if err != nil {
			return err
		}
		if len(template) == 0 {
			return failf(ErrValidation, "screen %s has no active seats", screen.PublicID)
		}
		inventory := make([]model.ShowSeat, 0, len(template))
		for _, seat := range template {
			price, ok := req.Prices[seat.SeatType]
			if !ok {
				return failf(ErrInvalidSeatType, "no price for seat type %s", seat.SeatType)
			}
			inventory = append(inventory, model.ShowSeat{
				ShowID:       show.ID,
				SeatPublicID: seat.PublicID,
				Label:        seat.Label,
				RowIndex:     seat.RowIndex,
				ColIndex:     seat.ColIndex,
				SeatType:     seat.SeatType,
				MetaJSON:     seat.MetaJSON,
				PriceCents:   price,
				State:        model.SeatAvailable,
			})
		}
		return s.seats.CreateBulk(ctx, inventory)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(queue.ShowCreated(show.PublicID, s.now().UTC()))
	return show, nil
}

// Cancel withdraws a show before it runs.  Only a SCHEDULED show can be
// cancelled; the status machine forbids everything else.
func (s *ShowService) Cancel(ctx context.Context, showPublicID string) error {
	var cancelled *model.Show
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		show, err := s.shows.ByPublicID(ctx, showPublicID)
		if err != nil {
			if errors.Is(err, repository.ErrShowNotFound) {
				return failf(ErrNotFound, "show %s not found", showPublicID)
			}
			return err
		}
		if !show.Status.CanTransitionTo(model.ShowCancelled) {
			return failf(ErrConflict, "show %s is %s and cannot be cancelled", show.PublicID, show.Status)
		}
		ok, err := s.shows.UpdateStatus(ctx, show.ID, show.Status, model.ShowCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return failf(ErrConflict, "show %s changed status concurrently", show.PublicID)
		}
		cancelled = show
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Publish(queue.ShowCancelled(cancelled.PublicID, s.now().UTC()))
	return nil
}

// SeatMap returns a show together with its full seat inventory.
func (s *ShowService) SeatMap(ctx context.Context, showPublicID string) (*model.Show, []model.ShowSeat, error) {
	show, err := s.shows.ByPublicID(ctx, showPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return nil, nil, failf(ErrNotFound, "show %s not found", showPublicID)
		}
		return nil, nil, err
	}
	seats, err := s.seats.ByShow(ctx, show.ID)
	if err != nil {
		return nil, nil, err
	}
	return show, seats, nil
}

// AdvanceLifecycle applies the two wall-clock phases: SCHEDULED shows
// whose start has passed become RUNNING, then RUNNING shows whose end
// has passed become COMPLETED.  Every row is processed independently; a
// row that fails or loses its conditional update is logged and skipped,
// never aborting the tick.  The queries re-derive from the clock each
// tick, so there is no checkpoint to maintain.
func (s *ShowService) AdvanceLifecycle(ctx context.Context, now time.Time) (started, completed int, err error) {
	now = now.UTC()
	due, err := s.shows.DueToStart(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	for _, show := range due {
		ok, err := s.shows.UpdateStatus(ctx, show.ID, model.ShowScheduled, model.ShowRunning)
		if err != nil {
			log.Printf("lifecycle: start show %s failed: %v", show.PublicID, err)
			continue
		}
		if !ok {
			continue
		}
		started++
		s.notifier.Publish(queue.ShowStatusUpdate(show.PublicID, string(model.ShowRunning), now))
	}
	ended, err := s.shows.DueToComplete(ctx, now)
	if err != nil {
		return started, 0, err
	}
	for _, show := range ended {
		ok, err := s.shows.UpdateStatus(ctx, show.ID, model.ShowRunning, model.ShowCompleted)
		if err != nil {
			log.Printf("lifecycle: complete show %s failed: %v", show.PublicID, err)
			continue
		}
		if !ok {
			continue
		}
		completed++
		s.notifier.Publish(queue.ShowStatusUpdate(show.PublicID, string(model.ShowCompleted), now))
	}
	return started, completed, nil
}
