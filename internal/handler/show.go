package handler // handler package contains show scheduling handlers

import (
	"net/http" // http defines status codes
	"time"     // time is used for parsing and formatting timestamps

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers

	"github.com/iliyamo/cinema-pos/internal/model"   // model defines the domain types
	"github.com/iliyamo/cinema-pos/internal/service" // service holds scheduling logic
)

// showJSON shapes a show for terminal responses.
func showJSON(s *model.Show) echo.Map {
	return echo.Map{
		"id":        s.PublicID,
		"movie_id":  s.MovieID,
		"screen_id": s.ScreenID,
		"starts_at": s.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":   s.EndsAt.UTC().Format(time.RFC3339),
		"status":    s.Status,
	}
}

// seatJSON shapes one show seat for the seat map.  Reservation details
// are reduced to the state and, for held seats, the whole seconds left
// on the hold; holder identities never leave the server.
func seatJSON(s *model.ShowSeat, now time.Time) echo.Map {
	m := echo.Map{
		"seat_id":     s.SeatPublicID,
		"label":       s.Label,
		"row":         s.RowIndex,
		"col":         s.ColIndex,
		"seat_type":   s.SeatType,
		"price_cents": s.PriceCents,
		"state":       s.State,
	}
	if s.MetaJSON != nil {
		m["meta"] = *s.MetaJSON
	}
	if s.State == model.SeatHeld && s.ExpiresAt != nil {
		left := s.ExpiresAt.Sub(now)
		if left < 0 {
			left = 0
		}
		m["hold_seconds_left"] = int64(left.Seconds())
	}
	return m
}

// ScheduleShow handles POST /v1/shows.  It creates the show and its full
// seat inventory in one shot; the end time is derived server-side from
// the movie's runtime.
func (h *POSHandler) ScheduleShow(c echo.Context) error {
	var body struct {
		MovieID  string            `json:"movie_id"`  // public id of the movie to screen
		ScreenID string            `json:"screen_id"` // public id of the screen
		StartsAt string            `json:"starts_at"` // ISO start time
		Prices   map[string]uint32 `json:"prices"`    // price in cents per seat type
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var startsAt time.Time
	if body.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, body.StartsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
		}
		startsAt = t
	}
	show, err := h.Shows.Schedule(c.Request().Context(), service.ScheduleRequest{
		MoviePublicID:  body.MovieID,
		ScreenPublicID: body.ScreenID,
		StartsAt:       startsAt,
		Prices:         body.Prices,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, showJSON(show))
}

// CancelShow handles POST /v1/shows/:id/cancel.
func (h *POSHandler) CancelShow(c echo.Context) error {
	if err := h.Shows.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SeatMap handles GET /v1/shows/:id/seats and returns the show together
// with every seat's state.
func (h *POSHandler) SeatMap(c echo.Context) error {
	show, seats, err := h.Shows.SeatMap(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	now := time.Now().UTC()
	out := make([]echo.Map, 0, len(seats))
	for i := range seats {
		out = append(out, seatJSON(&seats[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show":  showJSON(show),
		"seats": out,
	})
}
