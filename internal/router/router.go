package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-pos/internal/config"     // config supplies the rate limit tunables
	"github.com/iliyamo/cinema-pos/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cinema-pos/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPOS registers every terminal endpoint under /v1.  All of them
// require a valid terminal JWT; the Redis token bucket throttles bursts
// per terminal when a Redis client is available.
func RegisterPOS(e *echo.Echo, h *handler.POSHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	// Every terminal call carries a Bearer token with the acting user in
	// `sub` and the terminal session in `sid`.
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rl, rdb))

	// Show scheduling and the live seat map.
	g.POST("/shows", h.ScheduleShow)
	g.POST("/shows/:id/cancel", h.CancelShow)
	g.GET("/shows/:id/seats", h.SeatMap)
	g.GET("/shows/:id/bookings", h.ListShowBookings)

	// Seat holds.  Placing and releasing a hold are per-seat operations;
	// the session route frees everything a disconnected terminal held.
	g.POST("/shows/:id/seats/:seat/hold", h.HoldSeat)
	g.GET("/shows/:id/seats/:seat/hold", h.HoldStatus)
	g.DELETE("/shows/:id/seats/:seat/hold", h.ReleaseSeat)
	g.DELETE("/sessions/:sid/holds", h.ReleaseSession)

	// The booking ledger.
	g.POST("/bookings", h.CreateBooking)
	g.GET("/bookings/:id", h.GetBooking)
	g.POST("/bookings/:id/cancel", h.CancelBooking)
	g.POST("/bookings/:id/refund", h.RefundBooking)
	g.POST("/bookings/:id/print", h.PrintBooking)
	g.POST("/booking-groups/:ref/cancel", h.CancelBookingGroup)
}
