package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/railway-seat-reservation/internal/config"
	"github.com/iliyamo/railway-seat-reservation/internal/handler"
	"github.com/iliyamo/railway-seat-reservation/internal/middleware"
)

// Handlers groups every handler the API mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Trains   *handler.TrainHandler
	Bookings *handler.BookingHandler
	Tickets  *handler.TicketHandler
	Payments *handler.PaymentHandler
}

// Register mounts all routes on the Echo instance.  Train lookups are
// public and cached; everything touching a user's data sits behind JWT
// auth, and booking creation additionally passes the rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/signup", h.Auth.Signup)
	authG.POST("/login", h.Auth.Login)

	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	trains := api.Group("/trains")
	trains.GET("/available", h.Trains.Available, cache)
	trains.GET("/seat-status", h.Trains.SeatStatus)
	trains.GET("/:id", h.Trains.Detail, cache)

	jwt := middleware.JWTAuth(cfg.JWTSecret)

	users := api.Group("/users", jwt)
	users.GET("/profile", h.Users.Profile)
	users.PUT("/profile", h.Users.UpdateProfile)

	limit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	bookings := api.Group("/bookings", jwt)
	bookings.POST("/create", h.Bookings.Create, limit)
	bookings.GET("/my", h.Bookings.My)
	bookings.PATCH("/cancel/:ticket_id", h.Bookings.Cancel)

	tickets := api.Group("/tickets", jwt)
	tickets.GET("/:ticket_id", h.Tickets.Detail)

	payments := api.Group("/payments", jwt)
	payments.POST("/pay", h.Payments.Pay)
}
