package main // Entry point package

import (
	"context"   // context bounds the shutdown sequence
	"log"       // Logging library
	"os"        // os delivers shutdown signals
	"os/signal" // signal notifies on SIGINT/SIGTERM
	"syscall"   // syscall names SIGTERM
	"time"      // time bounds the shutdown grace period

	"github.com/joho/godotenv"    // godotenv loads a local .env file in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/cinema-pos/internal/config"     // Internal config loader
	"github.com/iliyamo/cinema-pos/internal/database"   // Internal MySQL connector
	"github.com/iliyamo/cinema-pos/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cinema-pos/internal/queue"      // Event broadcaster
	"github.com/iliyamo/cinema-pos/internal/repository" // Data access layer
	"github.com/iliyamo/cinema-pos/internal/router"     // Internal router setup
	"github.com/iliyamo/cinema-pos/internal/service"    // Business logic layer
	"github.com/iliyamo/cinema-pos/internal/worker"     // Background tickers
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables rate limiting
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	broadcaster := queue.NewBroadcaster(cfg.AMQPURL, cfg.EventBuffer)

	runner := repository.NewRunner(db)
	showRepo := repository.NewShowRepo(db)
	seatRepo := repository.NewShowSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)

	holds := service.NewHoldManager(seatRepo, broadcaster, cfg.HoldTTL)
	shows := service.NewShowService(runner, showRepo, seatRepo, catalogRepo, broadcaster, cfg.ScheduleBuffer)
	bookings := service.NewBookingService(runner, showRepo, seatRepo, bookingRepo, broadcaster, service.BookingConfig{
		VATPercent: cfg.VATPercent,
		MaxSeats:   cfg.MaxSeatsPerBook,
		Cutoff:     cfg.BookingCutoff,
	})

	// Background passes: the expired-hold sweep and the wall-clock show
	// lifecycle.  Both stop cleanly on shutdown.
	sweeper := worker.NewSweeper(holds, cfg.SweepInterval)
	sweeper.Start()
	lifecycle := worker.NewLifecycleScheduler(shows, cfg.LifecycleInterval)
	lifecycle.Start()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e) // Health check
	router.RegisterPOS(e, handler.NewPOSHandler(shows, holds, bookings), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil { // Start HTTP server
			log.Printf("server stopped: %v", err)
		}
	}()

	// Wait for a shutdown signal, then drain in order: stop accepting
	// requests, stop the tickers, flush queued events.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	lifecycle.Stop()
	sweeper.Stop()
	broadcaster.Close()
}
