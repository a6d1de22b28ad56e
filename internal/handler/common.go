package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel matching for service failures
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/cinema-pos/internal/service" // service holds the business logic layer
)

// POSHandler bundles the services the terminal endpoints need.
type POSHandler struct {
	Shows    *service.ShowService    // Shows schedules shows and serves seat maps
	Holds    *service.HoldManager    // Holds manages seat holds and releases
	Bookings *service.BookingService // Bookings confirms and voids sales
}

// NewPOSHandler constructs a POSHandler and panics if any dependency is nil.
func NewPOSHandler(shows *service.ShowService, holds *service.HoldManager, bookings *service.BookingService) *POSHandler {
	if shows == nil || holds == nil || bookings == nil {
		panic("nil service passed to NewPOSHandler")
	}
	return &POSHandler{Shows: shows, Holds: holds, Bookings: bookings}
}

// actingUser extracts the acting user id placed in the context by the JWT
// middleware (the token's `sub` claim).
func actingUser(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// sessionID extracts the terminal session id placed in the context by the
// JWT middleware (the token's `sid` claim).
func sessionID(c echo.Context) (string, error) {
	if s, ok := c.Get("session_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid session_id in context")
}

// fail translates a service error into the HTTP response.  The service
// sentinels carry the taxonomy; anything unmatched is a 500 with a
// generic body so internals never leak to the terminal.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSeatType), errors.Is(err, service.ErrInvalidPrice):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
