package repository // repository for show seat persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-pos/internal/model"
)

// seatColumns is the column list every show seat query selects, in the
// order scanShowSeat expects.  seatColumnsSS is the same list qualified
// with the ss alias for queries that join shows.
const seatColumns = `id, show_id, seat_public_id, label, row_index, col_index, seat_type, meta_json, price_cents, state, reserved_by, reserved_session, reserved_at, expires_at, confirmed_booking_id, created_at, updated_at`

var seatColumnsSS = "ss." + strings.ReplaceAll(seatColumns, ", ", ", ss.")

// ShowSeatRepo encapsulates database operations for show_seats.  All
// state transitions are single conditional UPDATE statements keyed on
// the current state: when two writers race for the same seat, only one
// observes the precondition and reports success via the returned bool.
type ShowSeatRepo struct {
	db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo { return &ShowSeatRepo{db: db} }

func scanShowSeat(row interface{ Scan(...any) error }) (*model.ShowSeat, error) {
	var s model.ShowSeat
	var state string
	if err := row.Scan(&s.ID, &s.ShowID, &s.SeatPublicID, &s.Label, &s.RowIndex, &s.ColIndex,
		&s.SeatType, &s.MetaJSON, &s.PriceCents, &state, &s.ReservedBy, &s.ReservedSession,
		&s.ReservedAt, &s.ExpiresAt, &s.ConfirmedBookingID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.State = model.SeatState(state)
	if !s.State.IsValid() {
		return nil, fmt.Errorf("show_seats.state holds unknown value %q", state)
	}
	return &s, nil
}

// CreateBulk inserts the show seats for a freshly scheduled show in one
// statement.  Reservation columns start NULL and state starts AVAILABLE;
// only identity, layout and price columns are written.
func (r *ShowSeatRepo) CreateBulk(ctx context.Context, seats []model.ShowSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_seats (show_id, seat_public_id, label, row_index, col_index, seat_type, meta_json, price_cents, state) VALUES `
	args := make([]any, 0, len(seats)*9)
	for i, ss := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, ss.ShowID, ss.SeatPublicID, ss.Label, ss.RowIndex, ss.ColIndex,
			ss.SeatType, ss.MetaJSON, ss.PriceCents, string(model.SeatAvailable))
	}
	_, err := q(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// ByShowAndSeat returns one seat addressed by show and seat public
// identifiers, or ErrSeatNotFound.
func (r *ShowSeatRepo) ByShowAndSeat(ctx context.Context, showPublicID, seatPublicID string) (*model.ShowSeat, error) {
	row := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+seatColumnsSS+`
		 FROM show_seats ss JOIN shows s ON s.id = ss.show_id
		 WHERE s.public_id = ? AND ss.seat_public_id = ?`,
		showPublicID, seatPublicID)
	s, err := scanShowSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	return s, err
}

// ByShow returns every seat of a show ordered by grid position.
func (r *ShowSeatRepo) ByShow(ctx context.Context, showID uint64) ([]model.ShowSeat, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+seatColumns+` FROM show_seats WHERE show_id = ? ORDER BY row_index, col_index`, showID)
	if err != nil {
		return nil, err
	}
	return collectShowSeats(rows)
}

// SeatsForUpdate loads the requested seats of a show and locks their rows
// for the remainder of the enclosing transaction.  Callers must run this
// inside Runner.WithTx; outside a transaction the FOR UPDATE clause has
// no effect.
func (r *ShowSeatRepo) SeatsForUpdate(ctx context.Context, showID uint64, seatPublicIDs []string) ([]model.ShowSeat, error) {
	if len(seatPublicIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatPublicIDs)), ",")
	args := make([]any, 0, len(seatPublicIDs)+1)
	args = append(args, showID)
	for _, id := range seatPublicIDs {
		args = append(args, id)
	}
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+seatColumns+` FROM show_seats WHERE show_id = ? AND seat_public_id IN (`+placeholders+`) FOR UPDATE`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectShowSeats(rows)
}

// TryHold flips an AVAILABLE seat to HELD, stamping holder, session and
// the expiry window in the same statement.  Returns false when the seat
// was not AVAILABLE, which covers both concurrent holders and seats
// already held or sold.
func (r *ShowSeatRepo) TryHold(ctx context.Context, id uint64, user, session string, at, expiresAt time.Time) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE show_seats
		 SET state = 'HELD', reserved_by = ?, reserved_session = ?, reserved_at = ?, expires_at = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND state = 'AVAILABLE'`,
		user, session, at.UTC(), expiresAt.UTC(), id,
	)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// ReleaseHeld flips a HELD seat back to AVAILABLE and clears every
// reservation column.  When holder is non-empty the update additionally
// requires reserved_by to match, enforcing that only the holder may
// release; the sweep and disconnect paths pass an empty holder to bypass
// the ownership check.
func (r *ShowSeatRepo) ReleaseHeld(ctx context.Context, id uint64, holder string) (bool, error) {
	query := `UPDATE show_seats
		 SET state = 'AVAILABLE', reserved_by = NULL, reserved_session = NULL, reserved_at = NULL, expires_at = NULL, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND state = 'HELD'`
	args := []any{id}
	if holder != "" {
		query += ` AND reserved_by = ?`
		args = append(args, holder)
	}
	res, err := q(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// ReleaseExpired releases a HELD seat only when its expiry has passed.
// The predicate makes the sweep race-safe: a hold refreshed or confirmed
// between the sweep's read and this write simply no longer matches.
func (r *ShowSeatRepo) ReleaseExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE show_seats
		 SET state = 'AVAILABLE', reserved_by = NULL, reserved_session = NULL, reserved_at = NULL, expires_at = NULL, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND state = 'HELD' AND expires_at <= ?`,
		id, now.UTC(),
	)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// MarkSold flips a HELD seat to SOLD, records the confirming booking and
// clears the reservation columns.
func (r *ShowSeatRepo) MarkSold(ctx context.Context, id, bookingID uint64) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE show_seats
		 SET state = 'SOLD', confirmed_booking_id = ?, reserved_by = NULL, reserved_session = NULL, reserved_at = NULL, expires_at = NULL, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND state = 'HELD'`,
		bookingID, id,
	)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// ReleaseSold returns a SOLD seat to AVAILABLE when its booking is
// cancelled or refunded.  The update is keyed on the confirming booking
// so a seat re-sold under a different booking is never touched.
func (r *ShowSeatRepo) ReleaseSold(ctx context.Context, id, bookingID uint64) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE show_seats
		 SET state = 'AVAILABLE', confirmed_booking_id = NULL, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND state = 'SOLD' AND confirmed_booking_id = ?`,
		id, bookingID,
	)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// HeldBySession returns every seat currently held under the given
// terminal session, joined with its show's public id for event payloads.
func (r *ShowSeatRepo) HeldBySession(ctx context.Context, session string) ([]model.HeldSeat, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+seatColumnsSS+`, s.public_id
		 FROM show_seats ss JOIN shows s ON s.id = ss.show_id
		 WHERE ss.state = 'HELD' AND ss.reserved_session = ?`,
		session)
	if err != nil {
		return nil, err
	}
	return collectHeldSeats(rows)
}

// ExpiredHeld returns every held seat whose expiry has passed, across all
// shows.  The sweeper releases each row independently afterwards.
func (r *ShowSeatRepo) ExpiredHeld(ctx context.Context, now time.Time) ([]model.HeldSeat, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+seatColumnsSS+`, s.public_id
		 FROM show_seats ss JOIN shows s ON s.id = ss.show_id
		 WHERE ss.state = 'HELD' AND ss.expires_at <= ?`,
		now.UTC())
	if err != nil {
		return nil, err
	}
	return collectHeldSeats(rows)
}

func collectShowSeats(rows *sql.Rows) ([]model.ShowSeat, error) {
	defer rows.Close()
	var out []model.ShowSeat
	for rows.Next() {
		s, err := scanShowSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func collectHeldSeats(rows *sql.Rows) ([]model.HeldSeat, error) {
	defer rows.Close()
	var out []model.HeldSeat
	for rows.Next() {
		var h model.HeldSeat
		var state string
		if err := rows.Scan(&h.ID, &h.ShowID, &h.SeatPublicID, &h.Label, &h.RowIndex, &h.ColIndex,
			&h.SeatType, &h.MetaJSON, &h.PriceCents, &state, &h.ReservedBy, &h.ReservedSession,
			&h.ReservedAt, &h.ExpiresAt, &h.ConfirmedBookingID, &h.CreatedAt, &h.UpdatedAt,
			&h.ShowPublicID); err != nil {
			return nil, err
		}
		h.State = model.SeatState(state)
		if !h.State.IsValid() {
			return nil, fmt.Errorf("show_seats.state holds unknown value %q", state)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// oneRow reports whether exactly one row was affected by res.
func oneRow(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
