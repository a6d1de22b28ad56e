package handler // handler package contains seat hold handlers

import (
	"net/http" // http defines status codes
	"time"     // time formats hold expiries

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers
)

// HoldSeat handles POST /v1/shows/:id/seats/:seat/hold.  The hold is
// attributed to the token's acting user and terminal session; its
// lifetime is fixed server-side.
func (h *POSHandler) HoldSeat(c echo.Context) error {
	user, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	session, err := sessionID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	seat, err := h.Holds.Hold(c.Request().Context(), c.Param("id"), c.Param("seat"), user, session)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seat_id":    seat.SeatPublicID,
		"state":      seat.State,
		"expires_at": seat.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// HoldStatus handles GET /v1/shows/:id/seats/:seat/hold and reports the
// whole seconds left on the seat's hold, zero when none is live.
func (h *POSHandler) HoldStatus(c echo.Context) error {
	left, err := h.Holds.RemainingHoldTime(c.Request().Context(), c.Param("id"), c.Param("seat"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hold_seconds_left": left})
}

// ReleaseSeat handles DELETE /v1/shows/:id/seats/:seat/hold.  Only the
// holder may release.
func (h *POSHandler) ReleaseSeat(c echo.Context) error {
	user, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Holds.Release(c.Request().Context(), c.Param("id"), c.Param("seat"), user); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReleaseSession handles DELETE /v1/sessions/:sid/holds.  It frees every
// seat held under a disconnected terminal session regardless of holder
// and reports how many were released.
func (h *POSHandler) ReleaseSession(c echo.Context) error {
	released, err := h.Holds.ReleaseSession(c.Request().Context(), c.Param("sid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}
