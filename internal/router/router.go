// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/its-ok-zid/movie-booking/internal/config"
	"github.com/its-ok-zid/movie-booking/internal/handler"
	"github.com/its-ok-zid/movie-booking/internal/middleware"
	"github.com/its-ok-zid/movie-booking/internal/model"
)

// Register wires every route. The Redis client may be nil; the rate
// limiter and response cache then pass requests straight through.
//
// Public:    health check, movie listing/search, booking, user
//            registration, login and password recovery.
// Protected: showing creation, availability override and showing
//            deletion, behind JWT auth and the ADMIN role.
func Register(e *echo.Echo, cfg config.Config, movies *handler.MovieHandler, users *handler.UserHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Account lifecycle. The limiter shields the credential endpoints
	// from brute-force attempts.
	auth := e.Group("/v1/users", limit)
	auth.POST("/register", users.Register)
	auth.POST("/login", users.Login)
	auth.POST("/forgot-password", users.ForgotPassword)
	auth.POST("/reset-password", users.ResetPassword)

	// Public reads are cacheable; bookings obviously are not.
	e.GET("/v1/movies", movies.List, cache)
	e.GET("/v1/movies/search", movies.Search, cache)
	e.POST("/v1/movies/book", movies.Book)

	// Administrative operations require a valid token with the ADMIN
	// role.
	admin := e.Group("/v1/movies",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(string(model.RoleAdmin)))
	admin.POST("", movies.Add)
	admin.PUT("/:movieName/tickets/:ticketId/availability", movies.UpdateAvailability)
	admin.DELETE("/:movieName/theatres/:theatreName", movies.Delete)
}
