package repository // repository for booking ledger persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-pos/internal/model"
)

const bookingColumns = `id, public_id, group_ref, show_public_id, seat_public_id, seat_label, price_cents, vat_cents, total_cents, payment_mode, status, reason, booked_by, booked_at, print_count, created_at, updated_at`

// BookingRepo encapsulates database operations for the bookings ledger.
// Rows are insert-only apart from status transitions and the print
// counter; nothing here deletes.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo given a DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var mode, status string
	if err := row.Scan(&b.ID, &b.PublicID, &b.GroupRef, &b.ShowPublicID, &b.SeatPublicID, &b.SeatLabel,
		&b.PriceCents, &b.VATCents, &b.TotalCents, &mode, &status, &b.Reason, &b.BookedBy, &b.BookedAt,
		&b.PrintCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.PaymentMode = model.PaymentMode(mode)
	b.Status = model.BookingStatus(status)
	if !b.PaymentMode.IsValid() {
		return nil, fmt.Errorf("bookings.payment_mode holds unknown value %q", mode)
	}
	if !b.Status.IsValid() {
		return nil, fmt.Errorf("bookings.status holds unknown value %q", status)
	}
	return &b, nil
}

// Create inserts one booking row and populates its ID.  Sales insert one
// row per seat so the generated ID can be stamped onto the seat as its
// confirming booking.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bookings (public_id, group_ref, show_public_id, seat_public_id, seat_label, price_cents, vat_cents, total_cents, payment_mode, status, booked_by, booked_at, print_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.PublicID, b.GroupRef, b.ShowPublicID, b.SeatPublicID, b.SeatLabel,
		b.PriceCents, b.VATCents, b.TotalCents, string(b.PaymentMode), string(b.Status),
		b.BookedBy, b.BookedAt.UTC(), b.PrintCount,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ByPublicID returns the booking with the given public identifier or
// ErrBookingNotFound.
func (r *BookingRepo) ByPublicID(ctx context.Context, publicID string) (*model.Booking, error) {
	row := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE public_id = ?`, publicID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ByGroupRef returns every booking sharing the given group reference.
func (r *BookingRepo) ByGroupRef(ctx context.Context, groupRef string) ([]model.Booking, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE group_ref = ? ORDER BY id`, groupRef)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListByShow returns every booking for a show, newest first.
func (r *BookingRepo) ListByShow(ctx context.Context, showPublicID string) ([]model.Booking, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE show_public_id = ? ORDER BY id DESC`, showPublicID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// IssuedSeat returns the first of the given seats that already has an
// ISSUED booking on the show, if any.  The sale path calls this inside
// its transaction immediately before inserting, closing the window
// between hold validation and commit.
func (r *BookingRepo) IssuedSeat(ctx context.Context, showPublicID string, seatPublicIDs []string) (string, bool, error) {
	if len(seatPublicIDs) == 0 {
		return "", false, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatPublicIDs)), ",")
	args := make([]any, 0, len(seatPublicIDs)+1)
	args = append(args, showPublicID)
	for _, id := range seatPublicIDs {
		args = append(args, id)
	}
	var seat string
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT seat_public_id FROM bookings
		 WHERE show_public_id = ? AND status = 'ISSUED' AND seat_public_id IN (`+placeholders+`) LIMIT 1`,
		args...).Scan(&seat)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return seat, true, nil
}

// UpdateStatus transitions a booking conditionally on its current status
// and records the operator reason.  Returns false when the booking was
// no longer in the expected status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus, reason *string) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = ?, reason = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
		string(to), reason, id, string(from),
	)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

// IncrementPrintCount bumps the ticket print counter and returns the new
// value.  The counter is audit-only and unbounded.
func (r *BookingRepo) IncrementPrintCount(ctx context.Context, publicID string) (uint32, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET print_count = print_count + 1, updated_at = UTC_TIMESTAMP() WHERE public_id = ?`,
		publicID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrBookingNotFound
	}
	var count uint32
	if err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT print_count FROM bookings WHERE public_id = ?`, publicID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
