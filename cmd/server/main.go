package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/its-ok-zid/movie-booking/internal/config"
	"github.com/its-ok-zid/movie-booking/internal/database"
	"github.com/its-ok-zid/movie-booking/internal/handler"
	"github.com/its-ok-zid/movie-booking/internal/queue"
	"github.com/its-ok-zid/movie-booking/internal/repository"
	"github.com/its-ok-zid/movie-booking/internal/router"
	"github.com/its-ok-zid/movie-booking/internal/service"
)

func main() {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	inventory := service.NewInventoryService(
		repository.NewShowingRepo(db),
		repository.NewBookingRepo(db),
		queue.NewPublisher(),
	)
	users := service.NewUserService(repository.NewUserRepo(db), cfg.BcryptCost)

	// Background consumer writing booking confirmations to
	// logs/booking.log. It reconnects on its own and never brings the
	// server down.
	go func() {
		if err := queue.StartBookedConsumer(); err != nil {
			log.Printf("booked-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg,
		handler.NewMovieHandler(inventory),
		handler.NewUserHandler(cfg, users),
		rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
