package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/config"
	"github.com/iliyamo/railway-seat-reservation/internal/database"
	"github.com/iliyamo/railway-seat-reservation/internal/handler"
	"github.com/iliyamo/railway-seat-reservation/internal/queue"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
	"github.com/iliyamo/railway-seat-reservation/internal/router"
	"github.com/iliyamo/railway-seat-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	trains := repository.NewTrainRepo(db)
	routes := repository.NewRouteRepo(db)
	inventory := repository.NewInventoryRepo(db)
	segments := repository.NewSegmentRepo(db)
	tickets := repository.NewTicketRepo(db)
	payments := repository.NewPaymentRepo(db)

	lifecycle := service.NewTicketLifecycle(db, tickets, segments, routes)

	// Background workers: pending-ticket sweeper and the confirmation
	// event consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := booking.NewSweeper(lifecycle, cfg.SweepThreshold, cfg.SweepInterval)
	go sweeper.Run(ctx)
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users),
		Users:    handler.NewUserHandler(users),
		Trains:   handler.NewTrainHandler(trains, routes, inventory, segments),
		Bookings: handler.NewBookingHandler(tickets, routes, inventory, segments, lifecycle),
		Tickets:  handler.NewTicketHandler(tickets),
		Payments: handler.NewPaymentHandler(tickets, payments, trains),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
