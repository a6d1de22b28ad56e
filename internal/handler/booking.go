package handler // handler package contains booking handlers

import (
	"net/http" // http defines status codes
	"time"     // time formats ledger timestamps

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers

	"github.com/iliyamo/cinema-pos/internal/model"   // model defines the domain types
	"github.com/iliyamo/cinema-pos/internal/service" // service holds the sale logic
)

// bookingJSON shapes one ledger row for terminal responses.
func bookingJSON(b *model.Booking) echo.Map {
	m := echo.Map{
		"id":           b.PublicID,
		"group_ref":    b.GroupRef,
		"show_id":      b.ShowPublicID,
		"seat_id":      b.SeatPublicID,
		"seat_label":   b.SeatLabel,
		"price_cents":  b.PriceCents,
		"vat_cents":    b.VATCents,
		"total_cents":  b.TotalCents,
		"payment_mode": b.PaymentMode,
		"status":       b.Status,
		"booked_by":    b.BookedBy,
		"booked_at":    b.BookedAt.UTC().Format(time.RFC3339),
		"print_count":  b.PrintCount,
	}
	if b.Reason != nil {
		m["reason"] = *b.Reason
	}
	return m
}

// CreateBooking handles POST /v1/bookings.  Every requested seat must be
// a live hold owned by the acting user; the whole request succeeds or
// fails as one.
func (h *POSHandler) CreateBooking(c echo.Context) error {
	user, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowID      string   `json:"show_id"`      // public id of the show
		SeatIDs     []string `json:"seat_ids"`     // seats to confirm
		PaymentMode string   `json:"payment_mode"` // CASH or POS
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	created, err := h.Bookings.Book(c.Request().Context(), service.BookRequest{
		ShowPublicID:  body.ShowID,
		SeatPublicIDs: body.SeatIDs,
		PaymentMode:   model.PaymentMode(body.PaymentMode),
		User:          user,
	})
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(created))
	total := uint32(0)
	for i := range created {
		out = append(out, bookingJSON(&created[i]))
		total += created[i].TotalCents
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"group_ref":   created[0].GroupRef,
		"total_cents": total,
		"bookings":    out,
	})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *POSHandler) GetBooking(c echo.Context) error {
	b, err := h.Bookings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// ListShowBookings handles GET /v1/shows/:id/bookings.
func (h *POSHandler) ListShowBookings(c echo.Context) error {
	bookings, err := h.Bookings.ListByShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingJSON(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// voidBody is the shared request body of cancel and refund.
type voidBody struct {
	Reason string `json:"reason"` // operator-supplied reason
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *POSHandler) CancelBooking(c echo.Context) error {
	var body voidBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Bookings.Cancel(c.Request().Context(), c.Param("id"), body.Reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RefundBooking handles POST /v1/bookings/:id/refund.  A reason is
// mandatory for refunds.
func (h *POSHandler) RefundBooking(c echo.Context) error {
	var body voidBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Bookings.Refund(c.Request().Context(), c.Param("id"), body.Reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelBookingGroup handles POST /v1/booking-groups/:ref/cancel.  It
// voids every still-issued booking in the group and reports how many
// were cancelled.
func (h *POSHandler) CancelBookingGroup(c echo.Context) error {
	var body voidBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cancelled, err := h.Bookings.CancelGroup(c.Request().Context(), c.Param("ref"), body.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": cancelled})
}

// PrintBooking handles POST /v1/bookings/:id/print and bumps the
// booking's print counter for auditing reprints.
func (h *POSHandler) PrintBooking(c echo.Context) error {
	count, err := h.Bookings.IncrementPrintCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"print_count": count})
}
